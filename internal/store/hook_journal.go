package store

import (
	"context"
	"time"

	"github.com/fabricbot/fabricbot/internal/core"
)

// JournaledHook is a webhook this bot created.
type JournaledHook struct {
	HookID    string    `json:"hook_id"`
	Name      string    `json:"name"`
	ChannelID string    `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordHook remembers a created webhook. Recording the same hook twice is a no-op.
func (db *DB) RecordHook(ctx context.Context, hook core.HookRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO hook_journal (hook_id, name, channel_id) VALUES (?, ?, ?)`,
		hook.ID, hook.Name, hook.ChannelID,
	)
	return err
}

// ListHooks returns journaled hooks, oldest first. An empty channelID lists all.
func (db *DB) ListHooks(ctx context.Context, channelID string) ([]JournaledHook, error) {
	query := `SELECT hook_id, name, channel_id, strftime('%Y-%m-%d %H:%M:%S', created_at) FROM hook_journal`
	var args []interface{}
	if channelID != "" {
		query += " WHERE channel_id = ?"
		args = append(args, channelID)
	}
	query += " ORDER BY id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []JournaledHook
	for rows.Next() {
		var h JournaledHook
		var ts string
		if err := rows.Scan(&h.HookID, &h.Name, &h.ChannelID, &ts); err != nil {
			return nil, err
		}
		h.CreatedAt, _ = time.Parse(sqliteTime, ts)
		hooks = append(hooks, h)
	}
	return hooks, rows.Err()
}
