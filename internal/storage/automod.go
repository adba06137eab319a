package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	IgnoreRole = "role"
	IgnoreUser = "user"
)

// AutomodLists is everything the message filter needs for one guild.
type AutomodLists struct {
	Words          []string
	IgnoredRoles   []string
	IgnoredUsers   []string
	BlockedDomains []string
}

func (s *Store) AddAutomodWord(ctx context.Context, guildID, word string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO automod_words (guild_id, word) VALUES (?, ?)`, guildID, strings.ToLower(strings.TrimSpace(word)))
	return err
}

// RemoveAutomodWord reports whether the word was on the list.
func (s *Store) RemoveAutomodWord(ctx context.Context, guildID, word string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automod_words WHERE guild_id = ? AND word = ?`, guildID, strings.ToLower(strings.TrimSpace(word)))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ToggleAutomodIgnore flips kind/targetID on the ignore list and returns
// whether it is now ignored.
func (s *Store) ToggleAutomodIgnore(ctx context.Context, guildID, kind, targetID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM automod_ignored WHERE guild_id = ? AND kind = ? AND target_id = ?`, guildID, kind, targetID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO automod_ignored (guild_id, kind, target_id) VALUES (?, ?, ?)`, guildID, kind, targetID)
	return err == nil, err
}

func (s *Store) AddDomainBlock(ctx context.Context, guildID, domain string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO domain_blocklist (guild_id, domain) VALUES (?, ?)`, guildID, strings.ToLower(domain))
	return err
}

func (s *Store) RemoveDomainBlock(ctx context.Context, guildID, domain string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM domain_blocklist WHERE guild_id = ? AND domain = ?`, guildID, strings.ToLower(domain))
	return err
}

func (s *Store) LoadAutomodLists(ctx context.Context, guildID string) (AutomodLists, error) {
	var lists AutomodLists
	var err error
	if lists.Words, err = s.listStrings(ctx, `SELECT word FROM automod_words WHERE guild_id = ? ORDER BY word`, guildID); err != nil {
		return AutomodLists{}, err
	}
	if lists.IgnoredRoles, err = s.listStrings(ctx, `SELECT target_id FROM automod_ignored WHERE guild_id = ? AND kind = ? ORDER BY target_id`, guildID, IgnoreRole); err != nil {
		return AutomodLists{}, err
	}
	if lists.IgnoredUsers, err = s.listStrings(ctx, `SELECT target_id FROM automod_ignored WHERE guild_id = ? AND kind = ? ORDER BY target_id`, guildID, IgnoreUser); err != nil {
		return AutomodLists{}, err
	}
	if lists.BlockedDomains, err = s.listStrings(ctx, `SELECT domain FROM domain_blocklist WHERE guild_id = ? ORDER BY domain`, guildID); err != nil {
		return AutomodLists{}, err
	}
	return lists, nil
}

// Strike counts automod hits per user and rule. A strike older than the
// forgive window resets the count before incrementing.
type Strike struct {
	GuildID    string
	UserID     string
	Rule       string
	CountTotal int
	LastAt     time.Time
	LastAction string
	ResetAt    *time.Time
}

func (s *Store) GetStrike(ctx context.Context, guildID, userID, rule string) (Strike, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, user_id, rule, count_total, last_at, COALESCE(last_action, ''), reset_at
		FROM automod_strikes
		WHERE guild_id = ? AND user_id = ? AND rule = ?
	`, guildID, userID, rule)

	var strike Strike
	var lastAt int64
	var resetAt sql.NullInt64
	err := row.Scan(&strike.GuildID, &strike.UserID, &strike.Rule, &strike.CountTotal, &lastAt, &strike.LastAction, &resetAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Strike{}, nil
		}
		return Strike{}, err
	}
	strike.LastAt = time.Unix(lastAt, 0)
	if resetAt.Valid {
		value := time.Unix(resetAt.Int64, 0)
		strike.ResetAt = &value
	}
	return strike, nil
}

func (s *Store) AddStrike(ctx context.Context, guildID, userID, rule, action string, forgiveAfter time.Duration) (count int, err error) {
	now := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var resetAt sql.NullInt64
	scanErr := tx.QueryRowContext(ctx, `
		SELECT count_total, reset_at FROM automod_strikes
		WHERE guild_id = ? AND user_id = ? AND rule = ?
	`, guildID, userID, rule).Scan(&count, &resetAt)
	if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		return 0, scanErr
	}
	if scanErr == nil && resetAt.Valid && now.Unix() >= resetAt.Int64 {
		count = 0
	}
	count++

	var nextReset any
	if forgiveAfter > 0 {
		nextReset = now.Add(forgiveAfter).Unix()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO automod_strikes (guild_id, user_id, rule, count_total, last_at, last_action, reset_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id, rule) DO UPDATE SET
			count_total = excluded.count_total,
			last_at = excluded.last_at,
			last_action = excluded.last_action,
			reset_at = excluded.reset_at
	`, guildID, userID, rule, count, now.Unix(), action, nextReset)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
