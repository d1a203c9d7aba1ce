package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

func (db *DB) Migrate(ctx context.Context) error {
	schema := `
		CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

		-- Users are provisioned by the external auth frontend; this service
		-- only reads identity and moderation bans.
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username VARCHAR(64),
			avatar_url TEXT,
			bans TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);

		-- The sticker list lives embedded in the pack row so every save
		-- writes the whole aggregate atomically.
		CREATE TABLE IF NOT EXISTS sticker_packs (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			key VARCHAR(8) UNIQUE NOT NULL,
			name VARCHAR(60) NOT NULL,
			description VARCHAR(110) NOT NULL,
			icon TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			listed BOOLEAN NOT NULL DEFAULT TRUE,
			subscriber_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			creator_id TEXT NOT NULL,
			stickers JSONB NOT NULL DEFAULT '[]'::jsonb
		);

		CREATE INDEX IF NOT EXISTS idx_sticker_packs_visible ON sticker_packs(published, listed);
		CREATE INDEX IF NOT EXISTS idx_sticker_packs_created ON sticker_packs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sticker_packs_subscribers ON sticker_packs(subscriber_count DESC);
		CREATE INDEX IF NOT EXISTS idx_sticker_packs_creator ON sticker_packs(creator_id);
	`

	_, err := db.Pool.Exec(ctx, schema)
	return err
}
