package store

import (
	"context"
)

// SystemSetting is a named instance-wide setting row.
type SystemSetting struct {
	Name  string
	Value string
}

// FindSystemSetting is the find condition for system setting.
type FindSystemSetting struct {
	Name string
}

// UpsertSystemSetting creates or replaces a system setting.
func (s *Store) UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error) {
	return s.driver.UpsertSystemSetting(ctx, upsert)
}

// GetSystemSetting returns a system setting by name, nil when absent.
func (s *Store) GetSystemSetting(ctx context.Context, find *FindSystemSetting) (*SystemSetting, error) {
	return s.driver.GetSystemSetting(ctx, find)
}
