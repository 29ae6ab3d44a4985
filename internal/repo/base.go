package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

// Base is embedded by every domain repository. Transaction-scoped copies are
// made by wrapping the tx handle in a fresh Base.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Paginate is a gorm scope applying normalized limit/offset.
func Paginate(params pagination.Params) func(*gorm.DB) *gorm.DB {
	params = params.Normalize()
	return func(q *gorm.DB) *gorm.DB {
		return q.Limit(params.Limit).Offset(params.Offset)
	}
}

// Exists reports whether query matches at least one row.
func Exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
