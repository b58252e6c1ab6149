package announcement

import (
	"context"

	"github.com/example/burger-helsinki/internal/db"
)

// Repo stores announcements published by staff.
type Repo struct{ db db.Querier }

func NewRepo(d db.Querier) *Repo { return &Repo{db: d} }

func (r *Repo) Create(ctx context.Context, it Item, createdBy int64) (int64, error) {
	if err := it.Validate(); err != nil {
		return 0, err
	}
	var author any
	if createdBy > 0 {
		author = createdBy
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO announcements(title, body, published_at, created_by)
VALUES ($1, $2, COALESCE($3, now()), $4)
RETURNING id`, it.Title, it.Body, nullTime(it), author).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, title, body, published_at
FROM announcements
ORDER BY published_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Body, &it.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	return r.db.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
}

func nullTime(it Item) any {
	if it.PublishedAt.IsZero() {
		return nil
	}
	return it.PublishedAt
}
