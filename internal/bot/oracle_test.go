package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestInviteUsageSkipsAnonymousInvites(t *testing.T) {
	list := []*discordgo.Invite{
		{Code: "a", Inviter: &discordgo.User{ID: "u1"}, Uses: 3},
		{Code: "b", Inviter: &discordgo.User{ID: "u1"}, Uses: 2},
		{Code: "c", Uses: 9},
		nil,
		{Code: "d", Inviter: &discordgo.User{ID: "u2"}, Uses: 1},
	}
	usage := inviteUsage(list)
	if len(usage) != 3 {
		t.Fatalf("expected three attributed invites, got %d", len(usage))
	}
	total := 0
	for _, u := range usage {
		if u.InviterID == "u1" {
			total += u.Uses
		}
	}
	if total != 5 {
		t.Fatalf("expected five uses for u1, got %d", total)
	}
}

func TestMemberHasRole(t *testing.T) {
	member := &discordgo.Member{Roles: []string{"r1", "r2"}}
	if !memberHasRole(member, "r2") || memberHasRole(member, "r3") || memberHasRole(nil, "r1") {
		t.Fatalf("unexpected role membership answers")
	}
}

func TestCommandDefinitions(t *testing.T) {
	names := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commandDefinitions() {
		if _, dup := names[cmd.Name]; dup {
			t.Fatalf("duplicate command %s", cmd.Name)
		}
		names[cmd.Name] = cmd
	}
	for _, want := range []string{"sorteo", "rerroll", "sorteoexp", "giveaways", "automod", "autorole", "logs", "language", "report", "ping"} {
		if _, ok := names[want]; !ok {
			t.Fatalf("missing command %s", want)
		}
	}
	for _, opt := range names["sorteo"].Options {
		if opt.Name == "ganadores" && (opt.MaxValue != 100 || opt.MinValue == nil || *opt.MinValue != 1) {
			t.Fatalf("winner bounds wrong: %+v", opt)
		}
	}
}
