package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/psisco/zakladki/internal/models"
)

const bookmarkColumns = `id, url, title, description, status, access_level, owner_id, sync_version, created_at, updated_at`

func scanBookmark(row pgx.Row) (*models.Bookmark, error) {
	var b models.Bookmark
	err := row.Scan(
		&b.ID,
		&b.URL,
		&b.Title,
		&b.Description,
		&b.Status,
		&b.AccessLevel,
		&b.OwnerID,
		&b.SyncVersion,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func collectBookmarks(rows pgx.Rows) ([]models.Bookmark, error) {
	defer rows.Close()

	var bookmarks []models.Bookmark
	for rows.Next() {
		var b models.Bookmark
		err := rows.Scan(
			&b.ID,
			&b.URL,
			&b.Title,
			&b.Description,
			&b.Status,
			&b.AccessLevel,
			&b.OwnerID,
			&b.SyncVersion,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if bookmarks == nil {
		return []models.Bookmark{}, nil
	}

	return bookmarks, nil
}

type CreateBookmarkParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	URL         string
	Title       string
	Description *string
	AccessLevel string
}

func (q *Queries) CreateBookmark(ctx context.Context, arg CreateBookmarkParams) (*models.Bookmark, error) {
	if arg.AccessLevel == "" {
		arg.AccessLevel = models.AccessLevelPrivate
	}

	query := `
		INSERT INTO bookmarks (id, url, title, description, status, access_level, owner_id, sync_version)
		VALUES ($1, $2, $3, $4, 'active', $5, $6, $7)
		RETURNING ` + bookmarkColumns
	return scanBookmark(q.db.QueryRow(ctx, query,
		arg.ID, arg.URL, arg.Title, arg.Description, arg.AccessLevel, arg.OwnerID, models.InitialSyncVersion))
}

func (q *Queries) GetBookmark(ctx context.Context, id, ownerID uuid.UUID) (*models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE id = $1 AND owner_id = $2`
	return scanBookmark(q.db.QueryRow(ctx, query, id, ownerID))
}

func (q *Queries) ListBookmarks(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Bookmark, error) {
	query := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookmarks(rows)
}

func (q *Queries) CountBookmarks(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM bookmarks WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

type UpdateBookmarkParams struct {
	URL         *string
	Title       *string
	Description *string
	Status      *string
	AccessLevel *string
}

// UpdateBookmark applies only the fields present in arg, leaving the
// rest untouched. Every accepted update advances sync_version by 1 and
// stamps updated_at, even when no field value actually changed.
// Returns (nil, nil) when the row does not exist or belongs to a
// different owner.
func (q *Queries) UpdateBookmark(ctx context.Context, id, ownerID uuid.UUID, arg UpdateBookmarkParams) (*models.Bookmark, error) {
	setClauses := []string{"sync_version = sync_version + 1", "updated_at = now()"}
	args := []interface{}{id, ownerID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if arg.URL != nil {
		addSet("url", *arg.URL)
	}
	if arg.Title != nil {
		addSet("title", *arg.Title)
	}
	if arg.Description != nil {
		addSet("description", *arg.Description)
	}
	if arg.Status != nil {
		addSet("status", *arg.Status)
	}
	if arg.AccessLevel != nil {
		addSet("access_level", *arg.AccessLevel)
	}

	query := fmt.Sprintf(`
		UPDATE bookmarks SET %s
		WHERE id = $1 AND owner_id = $2
		RETURNING `+bookmarkColumns,
		strings.Join(setClauses, ", "))

	return scanBookmark(q.db.QueryRow(ctx, query, args...))
}

func (q *Queries) DeleteBookmark(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// ListBookmarksSince answers the delta query: the owner's bookmarks
// touched after sinceTime and past sinceVersion, whichever cursors are
// supplied, ordered by updated_at ascending.
func (q *Queries) ListBookmarksSince(ctx context.Context, ownerID uuid.UUID, sinceTime *time.Time, sinceVersion *int64) ([]models.Bookmark, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{ownerID}

	if sinceTime != nil {
		args = append(args, *sinceTime)
		conditions = append(conditions, fmt.Sprintf("updated_at > $%d", len(args)))
	}
	if sinceVersion != nil {
		args = append(args, *sinceVersion)
		conditions = append(conditions, fmt.Sprintf("sync_version > $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT `+bookmarkColumns+`
		FROM bookmarks
		WHERE %s
		ORDER BY updated_at ASC
	`, strings.Join(conditions, " AND "))

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookmarks(rows)
}

// GetMaxSyncVersion returns the highest sync_version across the
// owner's bookmarks, or 0 when the owner has none.
func (q *Queries) GetMaxSyncVersion(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var version int64
	query := `SELECT COALESCE(MAX(sync_version), 0) FROM bookmarks WHERE owner_id = $1`
	if err := q.db.QueryRow(ctx, query, ownerID).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}
