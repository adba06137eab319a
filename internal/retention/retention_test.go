package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"community-assistant/internal/storage"

	"go.uber.org/zap"
)

type failingCleaner struct{}

func (failingCleaner) CleanupAuditLogs(context.Context, int) (int64, error) {
	return 0, errors.New("disk full")
}

func TestRunRemovesExpiredEntries(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	now := time.Now()
	_ = store.AddAuditLog(ctx, storage.AuditLog{GuildID: "g1", Level: "INFO", Event: "giveaway_created", CreatedAt: now})
	_ = store.AddAuditLog(ctx, storage.AuditLog{GuildID: "g1", Level: "INFO", Event: "giveaway_ended", CreatedAt: now.AddDate(0, 0, -20)})

	removed, err := New(store, 14, zap.NewNop()).Run(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("expected one removed, got %d %v", removed, err)
	}
}

func TestRunDisabled(t *testing.T) {
	removed, err := New(failingCleaner{}, 0, zap.NewNop()).Run(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("zero retention should skip cleanup, got %d %v", removed, err)
	}
}

func TestRunReportsFailure(t *testing.T) {
	if _, err := New(failingCleaner{}, 7, zap.NewNop()).Run(context.Background()); err == nil {
		t.Fatalf("expected cleanup error")
	}
}
