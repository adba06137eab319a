package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"community-assistant/internal/giveaway"
	"community-assistant/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.AuditLog)
	now    func() time.Time
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger, now: time.Now}
}

// SetNotifier mirrors every entry somewhere else, typically the guild's log
// channel.
func (l *Logger) SetNotifier(notify func(context.Context, storage.AuditLog)) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, level, guildID, userID, event, details string) {
	entry := storage.AuditLog{
		GuildID:   guildID,
		UserID:    userID,
		Level:     level,
		Event:     event,
		Details:   details,
		CreatedAt: l.now(),
	}
	if l.store != nil {
		if err := l.store.AddAuditLog(ctx, entry); err != nil {
			l.logger.Warn("audit persist failed", zap.String("guild_id", guildID), zap.String("event", event), zap.Error(err))
		}
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("audit", zap.String("level", level), zap.String("guild_id", guildID), zap.String("user_id", userID), zap.String("event", event), zap.String("details", details))
}

// Giveaway records one engine lifecycle event.
func (l *Logger) Giveaway(ctx context.Context, event giveaway.Event) {
	record := event.Giveaway
	details := fmt.Sprintf("id=%s prize=%q", record.ID, record.Terms.Prize)
	switch event.Type {
	case giveaway.EventCreated:
		details += fmt.Sprintf(" winners=%d ends=%s", record.Terms.WinnerCount, record.EndTime.UTC().Format(time.RFC3339))
	case giveaway.EventEnded, giveaway.EventRerolled:
		details += fmt.Sprintf(" participants=%d winners=%s", record.ParticipantCount(), mentionList(event.Winners))
	case giveaway.EventExpelled:
		details += " target=<@" + event.Target + ">"
	}
	l.Log(ctx, LevelInfo, record.GuildID, event.Actor, string(event.Type), details)
}

func mentionList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "<@" + id + ">"
	}
	return strings.Join(parts, ",")
}
