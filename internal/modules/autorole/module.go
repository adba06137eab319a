package autorole

import (
	"context"
	"strings"

	"community-assistant/internal/modules/audit"
	"community-assistant/internal/storage"

	"go.uber.org/zap"
)

// RoleAssigner is the slice of the Discord session the module needs.
type RoleAssigner interface {
	GuildMemberRoleAdd(guildID, userID, roleID string) error
}

type Module struct {
	store  *storage.Store
	audit  *audit.Logger
	logger *zap.Logger
}

func New(store *storage.Store, auditLogger *audit.Logger, logger *zap.Logger) *Module {
	return &Module{store: store, audit: auditLogger, logger: logger}
}

// HandleJoin gives a new member every configured role. A failed role does not
// stop the rest; the ids that were assigned are returned.
func (m *Module) HandleJoin(ctx context.Context, assigner RoleAssigner, guildID, userID string, isBot bool) []string {
	if isBot {
		return nil
	}
	roles, err := m.store.ListAutoroles(ctx, guildID)
	if err != nil {
		m.logger.Warn("autorole list failed", zap.String("guild_id", guildID), zap.Error(err))
		return nil
	}

	var assigned []string
	for _, roleID := range roles {
		if err := assigner.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
			m.logger.Warn("autorole assign failed",
				zap.String("guild_id", guildID),
				zap.String("user_id", userID),
				zap.String("role_id", roleID),
				zap.Error(err),
			)
			continue
		}
		assigned = append(assigned, roleID)
	}
	if len(assigned) > 0 {
		m.audit.Log(ctx, audit.LevelInfo, guildID, userID, "autorole_assigned", "roles="+strings.Join(assigned, ","))
	}
	return assigned
}
