package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gatherly/gatherly/store"
)

func (d *DB) UpsertSystemSetting(ctx context.Context, upsert *store.SystemSetting) (*store.SystemSetting, error) {
	stmt := `INSERT INTO system_setting (name, value)
		VALUES (` + placeholders(2) + `)
		ON CONFLICT(name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Name, upsert.Value); err != nil {
		return nil, fmt.Errorf("failed to upsert system setting: %w", err)
	}
	return upsert, nil
}

func (d *DB) GetSystemSetting(ctx context.Context, find *store.FindSystemSetting) (*store.SystemSetting, error) {
	stmt := `SELECT name, value FROM system_setting WHERE name = ` + placeholder(1)
	var setting store.SystemSetting
	if err := d.db.QueryRowContext(ctx, stmt, find.Name).Scan(&setting.Name, &setting.Value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get system setting: %w", err)
	}
	return &setting, nil
}
