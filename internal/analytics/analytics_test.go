package analytics

import (
	"context"
	"testing"
	"time"

	"community-assistant/internal/storage"
)

func TestReport(t *testing.T) {
	store, _ := storage.New(":memory:")
	defer store.Close()
	_ = store.Migrate()
	ctx := context.Background()
	now := time.Now()

	for _, entry := range []storage.AuditLog{
		{GuildID: "g1", Level: "INFO", Event: "giveaway_created", CreatedAt: now},
		{GuildID: "g1", Level: "INFO", Event: "giveaway_created", CreatedAt: now},
		{GuildID: "g1", Level: "INFO", Event: "giveaway_ended", CreatedAt: now},
		{GuildID: "g1", Level: "WARN", Event: "automod_delete", CreatedAt: now},
		{GuildID: "g1", Level: "WARN", Event: "automod_delete", CreatedAt: now.Add(-48 * time.Hour)},
	} {
		_ = store.AddAuditLog(ctx, entry)
	}

	report, err := New(store).Report(ctx, "g1", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 4 || report.ByLevel["WARN"] != 1 {
		t.Fatalf("unexpected totals %+v", report)
	}
	if report.Giveaways.Created != 2 || report.Giveaways.Ended != 1 {
		t.Fatalf("unexpected giveaway stats %+v", report.Giveaways)
	}
	if report.TopEvents[0].Event != "giveaway_created" {
		t.Fatalf("expected most frequent event first, got %+v", report.TopEvents)
	}
}
