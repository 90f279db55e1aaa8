package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PackLoader loads lesson-pack JSONB from Postgres.
type PackLoader struct {
	pool *pgxpool.Pool
}

func NewPackLoader(pool *pgxpool.Pool) *PackLoader {
	return &PackLoader{pool: pool}
}

func (l *PackLoader) LoadPack(ctx context.Context, packID string) (content.Pack, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM lesson_packs WHERE id=$1`, packID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return content.Pack{}, fmt.Errorf("%w: %q", domain.ErrPackNotFound, packID)
	}
	if err != nil {
		return content.Pack{}, fmt.Errorf("load lesson pack: %w", err)
	}
	var pack content.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return content.Pack{}, fmt.Errorf("unmarshal lesson pack: %w", err)
	}
	pack.ID = packID
	if err := pack.Validate(); err != nil {
		return content.Pack{}, fmt.Errorf("invalid lesson pack: %w", err)
	}
	return pack, nil
}
