package repo

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

type widget struct {
	ID   int64
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestBaseDBBindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}
	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestPaginateClampsAndOffsets(t *testing.T) {
	db := newTestDB(t)
	for i := 1; i <= 5; i++ {
		if err := db.Create(&widget{ID: int64(i), Name: "w"}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var rows []widget
	if err := db.Order("id ASC").Scopes(Paginate(pagination.Params{Limit: 2, Offset: 3})).Find(&rows).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != 4 {
		t.Fatalf("unexpected page: %+v", rows)
	}

	rows = nil
	if err := db.Order("id ASC").Scopes(Paginate(pagination.Params{Limit: 0, Offset: -4})).Find(&rows).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected default limit to return all 5 rows, got %d", len(rows))
	}
}

func TestExists(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&widget{ID: 1, Name: "lamp"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	found, err := Exists(db.Model(&widget{}).Where("name = ?", "lamp"))
	if err != nil || !found {
		t.Fatalf("expected lamp to exist, got %v %v", found, err)
	}
	found, err = Exists(db.Model(&widget{}).Where("name = ?", "mug"))
	if err != nil || found {
		t.Fatalf("expected mug to be missing, got %v %v", found, err)
	}
}
