package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"community-assistant/internal/giveaway"
	"community-assistant/internal/storage"

	"go.uber.org/zap"
)

func TestLogPersistsAndNotifies(t *testing.T) {
	store, _ := storage.New(":memory:")
	defer store.Close()
	_ = store.Migrate()

	logger := NewLogger(store, zap.NewNop())
	var mirrored []storage.AuditLog
	logger.SetNotifier(func(_ context.Context, entry storage.AuditLog) {
		mirrored = append(mirrored, entry)
	})

	ctx := context.Background()
	logger.Log(ctx, LevelWarn, "g1", "u1", "automod_delete", "rule=words")

	logs, err := store.ListAuditLogs(ctx, "g1", time.Now().Add(-time.Hour))
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected persisted log, got %d %v", len(logs), err)
	}
	if len(mirrored) != 1 || mirrored[0].Event != "automod_delete" {
		t.Fatalf("expected mirrored entry, got %+v", mirrored)
	}
}

func TestGiveawayEventDetails(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())
	var got storage.AuditLog
	logger.SetNotifier(func(_ context.Context, entry storage.AuditLog) { got = entry })

	record := giveaway.NewRecord("m1", "g1", "c1", giveaway.Terms{Prize: "Nitro", WinnerCount: 1}, time.Unix(0, 0), "A", "B")
	logger.Giveaway(context.Background(), giveaway.Event{
		Type:     giveaway.EventRerolled,
		Giveaway: *record,
		Winners:  []string{"B"},
		Actor:    "mod",
	})

	if got.Event != string(giveaway.EventRerolled) || got.UserID != "mod" || got.GuildID != "g1" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !strings.Contains(got.Details, "participants=2") || !strings.Contains(got.Details, "<@B>") {
		t.Fatalf("unexpected details %q", got.Details)
	}
}
