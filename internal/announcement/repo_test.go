package announcement

import (
	"context"
	"testing"
	"time"

	"github.com/example/burger-helsinki/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idRow int64

func (r idRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = int64(r)
	return nil
}

type itemRows struct {
	items []Item
	i     int
}

func (r *itemRows) Close()     {}
func (r *itemRows) Err() error { return nil }
func (r *itemRows) Next() bool { r.i++; return r.i <= len(r.items) }
func (r *itemRows) Scan(dest ...any) error {
	it := r.items[r.i-1]
	*(dest[0].(*int64)) = it.ID
	*(dest[1].(*string)) = it.Title
	*(dest[2].(*string)) = it.Body
	*(dest[3].(*time.Time)) = it.PublishedAt
	return nil
}

type fakeDB struct {
	args  []any
	items []Item
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) error {
	f.args = args
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) db.Row {
	f.args = args
	return idRow(7)
}

func (f *fakeDB) Query(context.Context, string, ...any) (db.Rows, error) {
	return &itemRows{items: f.items}, nil
}

func TestRepoCreate(t *testing.T) {
	f := &fakeDB{}
	r := NewRepo(f)

	id, err := r.Create(context.Background(), Item{Title: "Test Announcement", Body: "Hi"}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, []any{"Test Announcement", "Hi", nil, int64(3)}, f.args)

	_, err = r.Create(context.Background(), Item{Title: "No body"}, 0)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRepoList(t *testing.T) {
	f := &fakeDB{items: sample}
	items, err := NewRepo(f).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(items))
}
