package automod

import (
	"context"
	"strings"
	"testing"
	"time"

	"community-assistant/internal/config"
	"community-assistant/internal/modules/audit"
	"community-assistant/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestModule(t *testing.T, cfg config.AutomodConfig) (*Module, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(cfg, store, audit.NewLogger(store, zap.NewNop()), zap.NewNop()), store
}

func enabled() storage.GuildSettings {
	return storage.GuildSettings{GuildID: "g1", AutomodEnabled: true}
}

func TestBannedWordsFlagged(t *testing.T) {
	module, store := newTestModule(t, config.AutomodConfig{MaxMentions: 5})
	ctx := context.Background()
	_ = store.AddAutomodWord(ctx, "g1", "tonto")

	msg := Message{GuildID: "g1", ChannelID: "c1", MessageID: "1", AuthorID: "u1", Content: "eres TONTO"}
	verdict, flagged := module.HandleMessage(ctx, nil, msg, enabled())
	if !flagged || verdict.Rule != RuleWords || verdict.Strikes != 1 {
		t.Fatalf("expected word hit with strike, got %+v %v", verdict, flagged)
	}

	logs, _ := store.ListAuditLogs(ctx, "g1", time.Now().Add(-time.Hour))
	if len(logs) != 1 || logs[0].Event != "automod_words" {
		t.Fatalf("expected audit entry, got %+v", logs)
	}
	if !strings.Contains(logs[0].Details, "eres **TONTO**") {
		t.Fatalf("expected highlighted quote, got %q", logs[0].Details)
	}
}

func TestListsCachedUntilInvalidate(t *testing.T) {
	module, store := newTestModule(t, config.AutomodConfig{})
	ctx := context.Background()
	msg := Message{GuildID: "g1", AuthorID: "u1", Content: "spoiler alert"}

	if _, flagged := module.HandleMessage(ctx, nil, msg, enabled()); flagged {
		t.Fatalf("nothing banned yet")
	}
	_ = store.AddAutomodWord(ctx, "g1", "spoiler")
	if _, flagged := module.HandleMessage(ctx, nil, msg, enabled()); flagged {
		t.Fatalf("expected cached lists until invalidated")
	}
	module.Invalidate("g1")
	if _, flagged := module.HandleMessage(ctx, nil, msg, enabled()); !flagged {
		t.Fatalf("expected hit after invalidate")
	}
}

func TestDisabledGuildSkipsFilter(t *testing.T) {
	module, _ := newTestModule(t, config.AutomodConfig{MaxMentions: 1})
	msg := Message{GuildID: "g1", AuthorID: "u1", Mentions: 5}
	if _, flagged := module.HandleMessage(context.Background(), nil, msg, storage.GuildSettings{AutomodEnabled: false}); flagged {
		t.Fatalf("disabled automod must not flag")
	}
}

func TestCheckOrderAndIgnores(t *testing.T) {
	module, _ := newTestModule(t, config.AutomodConfig{})
	lists := storage.AutomodLists{
		Words:          []string{"malo"},
		BlockedDomains: []string{"bad.com"},
		IgnoredRoles:   []string{"staff"},
		IgnoredUsers:   []string{"owner"},
	}

	msg := Message{GuildID: "g1", AuthorID: "u1", Content: "malo https://cdn.bad.com/x", Mentions: 4}
	if v, _ := module.Check(msg, lists, 3); v.Rule != RuleMentions {
		t.Fatalf("mentions checked first, got %+v", v)
	}
	if v, _ := module.Check(msg, lists, 10); v.Rule != RuleWords {
		t.Fatalf("words checked second, got %+v", v)
	}
	msg.Content = "mira https://cdn.bad.com/x"
	if v, _ := module.Check(msg, lists, 10); v.Rule != RuleLinks {
		t.Fatalf("expected link hit, got %+v", v)
	}

	msg.MemberRoles = []string{"staff"}
	if _, flagged := module.Check(msg, lists, 10); flagged {
		t.Fatalf("ignored role must bypass")
	}
	msg.MemberRoles = nil
	msg.AuthorID = "owner"
	if _, flagged := module.Check(msg, lists, 10); flagged {
		t.Fatalf("ignored user must bypass")
	}
}

func TestFloodWindow(t *testing.T) {
	module, _ := newTestModule(t, config.AutomodConfig{FloodMessages: 2, FloodWindowSeconds: 10})
	now := time.Unix(1000, 0)
	module.now = func() time.Time { return now }
	msg := Message{GuildID: "g1", AuthorID: "u1", Content: "hola"}

	for i := 0; i < 2; i++ {
		if _, flagged := module.Check(msg, storage.AutomodLists{}, 0); flagged {
			t.Fatalf("message %d should pass", i+1)
		}
	}
	if v, flagged := module.Check(msg, storage.AutomodLists{}, 0); !flagged || v.Rule != RuleFlood {
		t.Fatalf("expected flood, got %+v", v)
	}
	now = now.Add(11 * time.Second)
	if _, flagged := module.Check(msg, storage.AutomodLists{}, 0); flagged {
		t.Fatalf("window should have expired")
	}
}

func TestMatchWordsAndHighlight(t *testing.T) {
	matched := MatchWords("Qué CAÑA de mensaje", []string{"caña", "nada"})
	if len(matched) != 1 || matched[0] != "cana" {
		t.Fatalf("unexpected matches %v", matched)
	}
	got := Highlight("Hola Spoiler final", []string{"spoiler"})
	if !strings.Contains(got, "**Spoiler**") {
		t.Fatalf("unexpected highlight %q", got)
	}
	words := SplitWords(" uno, Dos ,,uno")
	if len(words) != 2 || words[1] != "dos" {
		t.Fatalf("unexpected split %v", words)
	}
}

func TestFromDiscord(t *testing.T) {
	msg := FromDiscord(&discordgo.Message{
		ID:           "m1",
		GuildID:      "g1",
		ChannelID:    "c1",
		Author:       &discordgo.User{ID: "u1"},
		Mentions:     []*discordgo.User{{ID: "a"}, {ID: "b"}},
		MentionRoles: []string{"r1"},
		Member:       &discordgo.Member{Roles: []string{"staff"}},
	})
	if msg.Mentions != 3 || msg.AuthorID != "u1" || len(msg.MemberRoles) != 1 {
		t.Fatalf("unexpected conversion %+v", msg)
	}
}
