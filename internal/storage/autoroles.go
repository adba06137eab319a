package storage

import "context"

func (s *Store) AddAutorole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO autoroles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
	return err
}

func (s *Store) RemoveAutorole(ctx context.Context, guildID, roleID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM autoroles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ListAutoroles(ctx context.Context, guildID string) ([]string, error) {
	return s.listStrings(ctx, `SELECT role_id FROM autoroles WHERE guild_id = ? ORDER BY role_id`, guildID)
}
