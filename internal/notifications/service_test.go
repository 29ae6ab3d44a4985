package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(kvstore.NewMemory(), "admin")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateInput{Type: enums.NotificationTypeOrder, Title: fmt.Sprintf("order %d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	res, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 3 || res.UnreadCount != 3 {
		t.Fatalf("unexpected counts total=%d unread=%d", res.Total, res.UnreadCount)
	}
	if res.Notifications[0].Title != "order 2" {
		t.Fatalf("expected newest first, got %s", res.Notifications[0].Title)
	}
	if res.Notifications[0].Priority != enums.NotificationPriorityMedium {
		t.Fatalf("expected default priority medium, got %s", res.Notifications[0].Priority)
	}
}

func TestListCappedAtMax(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for i := 0; i < MaxPerUser+5; i++ {
		if _, err := svc.Create(ctx, CreateInput{Type: enums.NotificationTypeSystem, Title: fmt.Sprintf("n%d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != MaxPerUser {
		t.Fatalf("expected cap %d, got %d", MaxPerUser, stats.Total)
	}
}

func TestMarkReadAndReadAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first, _ := svc.Create(ctx, CreateInput{Type: enums.NotificationTypeAlert, Title: "a", Priority: enums.NotificationPriorityHigh})
	_, _ = svc.Create(ctx, CreateInput{Type: enums.NotificationTypeAlert, Title: "b"})
	_, _ = svc.Create(ctx, CreateInput{Type: enums.NotificationTypeProduct, Title: "c"})

	read, err := svc.MarkRead(ctx, first.ID)
	if err != nil || !read.Read || read.ReadAt == nil {
		t.Fatalf("expected notification marked read, got %+v err=%v", read, err)
	}
	if _, err := svc.MarkRead(ctx, "missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	alertType := enums.NotificationTypeAlert
	res, _ := svc.List(ctx, ListParams{UnreadOnly: true, Type: &alertType})
	if len(res.Notifications) != 1 || res.Notifications[0].Title != "b" {
		t.Fatalf("unexpected filtered list %+v", res.Notifications)
	}

	count, err := svc.MarkAllRead(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 marked, got %d err=%v", count, err)
	}
	unread, _ := svc.UnreadCount(ctx)
	if unread != 0 {
		t.Fatalf("expected no unread, got %d", unread)
	}
}

func TestDeleteAndValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	n, _ := svc.Create(ctx, CreateInput{Type: enums.NotificationTypeInsight, Title: "x"})
	if err := svc.Delete(ctx, n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, n.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Type: "bogus", Title: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateDemo(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.GenerateDemo(context.Background())
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("expected 5 demo notifications, got %d", len(created))
	}
	stats, _ := svc.Stats(context.Background())
	if stats.ByType[enums.NotificationTypeAlert.String()] != 1 {
		t.Fatalf("expected one alert, got %v", stats.ByType)
	}
}
