package filter

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// PostgresStore persists the policy across four tables:
//
//	filter_config     — single row (id=1): enabled, default_deny,
//	                    allowed_categories, pin_hash, pin_salt
//	filter_categories — per-category enabled switch, position = declared order
//	filter_whitelist  — unique on (youtube_id, type)
//	filter_keywords   — lowercased keyword set
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema and seeds defaults when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS filter_config (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			default_deny BOOLEAN NOT NULL DEFAULT FALSE,
			allowed_categories TEXT[] NOT NULL DEFAULT '{}',
			pin_hash TEXT NOT NULL DEFAULT '',
			pin_salt TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS filter_categories (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			position INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS filter_whitelist (
			youtube_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (youtube_id, type)
		);
		CREATE TABLE IF NOT EXISTS filter_keywords (
			keyword TEXT PRIMARY KEY
		)`)
	if err != nil {
		return err
	}

	cfg := defaultConfig()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO filter_config (id, enabled, default_deny, allowed_categories)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		cfg.Enabled, cfg.DefaultDeny, cfg.AllowedCategories)
	if err != nil {
		return err
	}

	for i, c := range DefaultCategories {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO filter_categories (id, label, enabled, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Label, c.Enabled, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Whitelist: make(map[whitelistKey]struct{}),
	}

	err := s.pool.QueryRow(ctx, `
		SELECT enabled, default_deny, allowed_categories, pin_hash, pin_salt
		FROM filter_config WHERE id = 1`).Scan(
		&snap.Config.Enabled, &snap.Config.DefaultDeny,
		&snap.Config.AllowedCategories, &snap.Config.PINHash, &snap.Config.PINSalt)
	if err == pgx.ErrNoRows {
		snap.Config = defaultConfig()
	} else if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, label, enabled FROM filter_categories ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.CategoryDefinition
		if err := rows.Scan(&c.ID, &c.Label, &c.Enabled); err != nil {
			return nil, err
		}
		snap.Categories = append(snap.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(snap.Categories) == 0 {
		snap.Categories = append([]model.CategoryDefinition(nil), DefaultCategories...)
	}

	wrows, err := s.pool.Query(ctx, `SELECT youtube_id, type FROM filter_whitelist`)
	if err != nil {
		return nil, err
	}
	defer wrows.Close()
	for wrows.Next() {
		var id, typ string
		if err := wrows.Scan(&id, &typ); err != nil {
			return nil, err
		}
		snap.Whitelist[whitelistKey{ID: id, Type: model.ContentType(typ)}] = struct{}{}
	}
	if err := wrows.Err(); err != nil {
		return nil, err
	}

	krows, err := s.pool.Query(ctx, `SELECT keyword FROM filter_keywords ORDER BY keyword`)
	if err != nil {
		return nil, err
	}
	defer krows.Close()
	for krows.Next() {
		var kw string
		if err := krows.Scan(&kw); err != nil {
			return nil, err
		}
		snap.Keywords = append(snap.Keywords, kw)
	}
	return snap, krows.Err()
}

func (s *PostgresStore) SaveConfig(ctx context.Context, cfg model.FilterConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO filter_config (id, enabled, default_deny, allowed_categories, pin_hash, pin_salt)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			default_deny = EXCLUDED.default_deny,
			allowed_categories = EXCLUDED.allowed_categories,
			pin_hash = EXCLUDED.pin_hash,
			pin_salt = EXCLUDED.pin_salt`,
		cfg.Enabled, cfg.DefaultDeny, cfg.AllowedCategories, cfg.PINHash, cfg.PINSalt)
	return err
}

func (s *PostgresStore) SetCategoryEnabled(ctx context.Context, categoryID string, enabled bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE filter_categories SET enabled = $1 WHERE id = $2`, enabled, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownCategory
	}
	return nil
}

func (s *PostgresStore) AddWhitelist(ctx context.Context, item model.WhitelistItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO filter_whitelist (youtube_id, type, title, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (youtube_id, type) DO UPDATE SET
			title = EXCLUDED.title, reason = EXCLUDED.reason`,
		item.YoutubeID, string(item.Type), item.Title, item.Reason)
	return err
}

func (s *PostgresStore) RemoveWhitelist(ctx context.Context, youtubeID string, typ model.ContentType) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM filter_whitelist WHERE youtube_id = $1 AND type = $2`,
		youtubeID, string(typ))
	return err
}

func (s *PostgresStore) AddKeyword(ctx context.Context, keyword string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO filter_keywords (keyword) VALUES ($1) ON CONFLICT DO NOTHING`,
		strings.ToLower(strings.TrimSpace(keyword)))
	return err
}

func (s *PostgresStore) RemoveKeyword(ctx context.Context, keyword string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM filter_keywords WHERE keyword = $1`,
		strings.ToLower(strings.TrimSpace(keyword)))
	return err
}
