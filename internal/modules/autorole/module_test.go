package autorole

import (
	"context"
	"errors"
	"testing"

	"community-assistant/internal/modules/audit"
	"community-assistant/internal/storage"

	"go.uber.org/zap"
)

type fakeAssigner struct {
	added []string
	fail  string
}

func (f *fakeAssigner) GuildMemberRoleAdd(_, _, roleID string) error {
	if roleID == f.fail {
		return errors.New("missing permissions")
	}
	f.added = append(f.added, roleID)
	return nil
}

func TestHandleJoinAssignsRoles(t *testing.T) {
	store, _ := storage.New(":memory:")
	defer store.Close()
	_ = store.Migrate()
	ctx := context.Background()
	_ = store.AddAutorole(ctx, "g1", "r1")
	_ = store.AddAutorole(ctx, "g1", "r2")
	_ = store.AddAutorole(ctx, "g1", "r3")

	module := New(store, audit.NewLogger(store, zap.NewNop()), zap.NewNop())
	assigner := &fakeAssigner{fail: "r2"}

	assigned := module.HandleJoin(ctx, assigner, "g1", "u1", false)
	if len(assigned) != 2 || assigned[0] != "r1" || assigned[1] != "r3" {
		t.Fatalf("expected r1 and r3, got %v", assigned)
	}
	if got := module.HandleJoin(ctx, assigner, "g1", "bot", true); got != nil {
		t.Fatalf("bots get no roles")
	}
}
