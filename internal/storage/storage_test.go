package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrateTwice(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUpsertGuildSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings := GuildSettings{
		GuildID:        "g1",
		LogChannel:     "c1",
		Language:       "en",
		AutomodEnabled: true,
		MaxMentions:    4,
		RetentionDays:  30,
	}
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.LogChannel = "c2"
	settings.AutomodEnabled = false
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, err := store.GetGuildSettings(ctx, "g1", GuildSettings{Language: "es"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.LogChannel != "c2" || got.AutomodEnabled || got.Language != "en" || got.MaxMentions != 4 {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestGuildSettingsDefaults(t *testing.T) {
	store := newTestStore(t)
	defaults := GuildSettings{Language: "es", AutomodEnabled: true, MaxMentions: 5}
	got, err := store.GetGuildSettings(context.Background(), "unknown", defaults)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GuildID != "unknown" || got.Language != "es" || !got.AutomodEnabled || got.MaxMentions != 5 {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestAuditLogsAndCleanup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = store.AddAuditLog(ctx, AuditLog{GuildID: "g1", Level: "INFO", Event: "giveaway_created", CreatedAt: now})
	_ = store.AddAuditLog(ctx, AuditLog{GuildID: "g1", Level: "INFO", Event: "giveaway_ended", CreatedAt: now.AddDate(0, 0, -40)})
	_ = store.AddAuditLog(ctx, AuditLog{GuildID: "g2", Level: "INFO", Event: "automod_delete", CreatedAt: now})

	logs, err := store.ListAuditLogs(ctx, "g1", now.AddDate(0, 0, -60))
	if err != nil || len(logs) != 2 {
		t.Fatalf("expected two logs, got %d %v", len(logs), err)
	}
	if logs[0].Event != "giveaway_created" {
		t.Fatalf("expected newest first, got %s", logs[0].Event)
	}

	removed, err := store.CleanupAuditLogs(ctx, 30)
	if err != nil || removed != 1 {
		t.Fatalf("expected one removed, got %d %v", removed, err)
	}
	logs, _ = store.ListAuditLogs(ctx, "g1", now.AddDate(0, 0, -60))
	if len(logs) != 1 {
		t.Fatalf("expected one log after cleanup, got %d", len(logs))
	}
}

func TestAutomodLists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.AddAutomodWord(ctx, "g1", " Spoiler ")
	_ = store.AddAutomodWord(ctx, "g1", "spoiler")
	_ = store.AddDomainBlock(ctx, "g1", "Evil.Example")
	ignored, err := store.ToggleAutomodIgnore(ctx, "g1", IgnoreRole, "r1")
	if err != nil || !ignored {
		t.Fatalf("expected role ignored, got %v %v", ignored, err)
	}
	_, _ = store.ToggleAutomodIgnore(ctx, "g1", IgnoreUser, "u1")

	lists, err := store.LoadAutomodLists(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lists.Words) != 1 || lists.Words[0] != "spoiler" {
		t.Fatalf("unexpected words %v", lists.Words)
	}
	if len(lists.BlockedDomains) != 1 || lists.BlockedDomains[0] != "evil.example" {
		t.Fatalf("unexpected domains %v", lists.BlockedDomains)
	}
	if len(lists.IgnoredRoles) != 1 || len(lists.IgnoredUsers) != 1 {
		t.Fatalf("unexpected ignore lists %+v", lists)
	}

	ignored, _ = store.ToggleAutomodIgnore(ctx, "g1", IgnoreRole, "r1")
	if ignored {
		t.Fatalf("second toggle should un-ignore")
	}
	removed, _ := store.RemoveAutomodWord(ctx, "g1", "SPOILER")
	if !removed {
		t.Fatalf("expected word removed")
	}
	removed, _ = store.RemoveAutomodWord(ctx, "g1", "spoiler")
	if removed {
		t.Fatalf("expected nothing to remove")
	}
}

func TestStrikesCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := store.AddStrike(ctx, "g1", "u1", "flood", "delete", time.Hour)
		if err != nil || count != i {
			t.Fatalf("strike %d: got %d %v", i, count, err)
		}
	}
	strike, err := store.GetStrike(ctx, "g1", "u1", "flood")
	if err != nil || strike.CountTotal != 3 || strike.ResetAt == nil || strike.LastAction != "delete" {
		t.Fatalf("unexpected strike %+v %v", strike, err)
	}
	if other, _ := store.GetStrike(ctx, "g1", "u1", "words"); other.CountTotal != 0 {
		t.Fatalf("rules are counted separately")
	}
}

func TestAutoroles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_ = store.AddAutorole(ctx, "g1", "r2")
	_ = store.AddAutorole(ctx, "g1", "r1")
	_ = store.AddAutorole(ctx, "g1", "r1")

	roles, err := store.ListAutoroles(ctx, "g1")
	if err != nil || len(roles) != 2 || roles[0] != "r1" {
		t.Fatalf("unexpected roles %v %v", roles, err)
	}
	if removed, _ := store.RemoveAutorole(ctx, "g1", "r1"); !removed {
		t.Fatalf("expected removal")
	}
	if removed, _ := store.RemoveAutorole(ctx, "g1", "r1"); removed {
		t.Fatalf("expected nothing to remove")
	}
}
