package packs

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/stickers-back/internal/models"
)

// PacksPerPage is the fixed page size of the public listing.
const PacksPerPage = 12

type ListFilter struct {
	Search string
	Sort   string // "popular", "oldest", default newest
	Page   int    // 1-indexed; <= 0 means no skip
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const packColumns = `id, key, name, description, icon, published, listed, subscriber_count, created_at, creator_id, stickers`

func scanPack(row pgx.Row) (*models.StickerPack, error) {
	pack := &models.StickerPack{}
	err := row.Scan(
		&pack.ID, &pack.Key, &pack.Name, &pack.Description, &pack.Icon,
		&pack.Published, &pack.Listed, &pack.SubscriberCount,
		&pack.CreatedAt, &pack.CreatorID, &pack.Stickers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, failf(ErrNotFound, "sticker pack not found")
		}
		return nil, err
	}
	return pack, nil
}

// GetByKey loads the full aggregate, embedded stickers included.
func (r *Repository) GetByKey(ctx context.Context, key string) (*models.StickerPack, error) {
	row := r.db.QueryRow(ctx, `SELECT `+packColumns+` FROM sticker_packs WHERE key = $1`, key)
	return scanPack(row)
}

// List returns one page of published+listed packs matching the filter and the
// total match count. The sticker column is never read here.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*models.StickerPack, int, error) {
	where := `published = TRUE AND listed = TRUE`
	args := []interface{}{}

	if filter.Search != "" {
		where += ` AND (name ILIKE $1 OR key ILIKE $1 OR description ILIKE $1)`
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sticker_packs WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	var orderBy string
	switch filter.Sort {
	case "popular":
		orderBy = `subscriber_count DESC`
	case "oldest":
		orderBy = `created_at ASC`
	default:
		orderBy = `created_at DESC`
	}

	skip := 0
	if filter.Page > 0 {
		skip = (filter.Page - 1) * PacksPerPage
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, key, name, description, icon, published, listed, subscriber_count, created_at, creator_id
		FROM sticker_packs WHERE `+where+` ORDER BY `+orderBy+`
		LIMIT `+strconv.Itoa(PacksPerPage)+` OFFSET `+strconv.Itoa(skip),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var packs []*models.StickerPack
	for rows.Next() {
		pack := &models.StickerPack{}
		err := rows.Scan(
			&pack.ID, &pack.Key, &pack.Name, &pack.Description, &pack.Icon,
			&pack.Published, &pack.Listed, &pack.SubscriberCount,
			&pack.CreatedAt, &pack.CreatorID,
		)
		if err != nil {
			return nil, 0, err
		}
		packs = append(packs, pack)
	}

	return packs, total, rows.Err()
}

// Create inserts a new aggregate. The unique index on key backstops the
// service-level existence check.
func (r *Repository) Create(ctx context.Context, pack *models.StickerPack) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sticker_packs (id, key, name, description, icon, published, listed, subscriber_count, created_at, creator_id, stickers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, pack.ID, pack.Key, pack.Name, pack.Description, pack.Icon,
		pack.Published, pack.Listed, pack.SubscriberCount, pack.CreatedAt, pack.CreatorID, pack.Stickers)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return failf(ErrConflict, "there is already a sticker pack with that key")
		}
		return err
	}
	return nil
}

// Save writes the aggregate's mutable state back, embedded list included.
// Read-modify-write with no version check: concurrent saves race and the
// later write wins.
func (r *Repository) Save(ctx context.Context, pack *models.StickerPack) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sticker_packs
		SET name = $2, description = $3, icon = $4, published = $5, listed = $6, subscriber_count = $7, stickers = $8
		WHERE key = $1
	`, pack.Key, pack.Name, pack.Description, pack.Icon,
		pack.Published, pack.Listed, pack.SubscriberCount, pack.Stickers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return failf(ErrNotFound, "sticker pack not found")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sticker_packs WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return failf(ErrNotFound, "sticker pack not found")
	}
	return nil
}
