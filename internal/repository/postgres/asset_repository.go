package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type assetRepository struct {
	db *DB
}

func NewAssetRepository(db *DB) *assetRepository {
	return &assetRepository{db: db}
}

// Record upserts the asset by object key; re-uploads refresh size, type and
// updated_at.
func (r *assetRepository) Record(ctx context.Context, asset *domain.Asset) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO storage_assets (
				user_id, kind, object_key, url, size, content_type, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			ON CONFLICT (object_key)
			DO UPDATE SET
				url = EXCLUDED.url,
				size = EXCLUDED.size,
				content_type = EXCLUDED.content_type,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`

		row := tx.QueryRowxContext(ctx, query,
			asset.UserID,
			asset.Kind,
			asset.Key,
			asset.URL,
			asset.Size,
			asset.ContentType,
		)
		if err := row.Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt); err != nil {
			return fmt.Errorf("failed to record asset %s: %w", asset.Key, err)
		}
		return nil
	})
}

func (r *assetRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Asset, error) {
	query := `
		SELECT id, user_id, kind, object_key, url, size, content_type, created_at, updated_at
		FROM storage_assets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	assets := make([]*domain.Asset, 0)
	if err := r.db.SelectContext(ctx, &assets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (r *assetRepository) DeleteByKey(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM storage_assets WHERE object_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	return nil
}

func (r *assetRepository) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM storage_assets WHERE object_key LIKE $1 ESCAPE '\'`,
			escapeLike(prefix)+"%",
		)
		if err != nil {
			return fmt.Errorf("failed to delete assets under %s: %w", prefix, err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
