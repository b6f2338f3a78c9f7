package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatherly/gatherly/store"
)

func (d *DB) CreateWebhook(ctx context.Context, create *store.Webhook) (*store.Webhook, error) {
	fields := []string{"creator_id", "name", "url"}
	placeholderValues := []any{create.CreatorID, create.Name, create.URL}

	stmt := `INSERT INTO webhook (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}

	return create, nil
}

func (d *DB) ListWebhooks(ctx context.Context, find *store.FindWebhook) ([]*store.Webhook, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "webhook.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "webhook.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "webhook.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, creator_id, created_ts, updated_ts, row_status, name, url
		FROM webhook
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY webhook.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Webhook, 0)
	for rows.Next() {
		var webhook store.Webhook
		if err := rows.Scan(
			&webhook.ID,
			&webhook.CreatorID,
			&webhook.CreatedTs,
			&webhook.UpdatedTs,
			&webhook.RowStatus,
			&webhook.Name,
			&webhook.URL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		list = append(list, &webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhooks: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteWebhook(ctx context.Context, delete *store.DeleteWebhook) error {
	stmt := `DELETE FROM webhook WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("webhook not found")
	}

	return nil
}
