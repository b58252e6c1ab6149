// Package announcement holds the restaurant's news feed and the search used
// by the announcements page.
package announcement

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var ErrInvalid = errors.New("invalid announcement")

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Body        string    `json:"body" yaml:"body"`
	PublishedAt time.Time `json:"publishedAt" yaml:"published_at"`
}

func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(it.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalid)
	}
	return nil
}

// Age renders the publish time relative to now, e.g. "3 days ago".
func (it Item) Age(now time.Time) string {
	if it.PublishedAt.IsZero() {
		return ""
	}
	return humanize.RelTime(it.PublishedAt, now, "ago", "from now")
}

// Source provides the full announcement collection.
type Source interface {
	List(ctx context.Context) ([]Item, error)
}

// Static serves a fixed collection.
type Static []Item

func (s Static) List(context.Context) ([]Item, error) {
	out := slices.Clone([]Item(s))
	SortNewestFirst(out)
	return out, nil
}

// Filter returns the items whose title or body contains query, ignoring
// case. The input slice is never modified; an empty query matches all.
func Filter(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q == "" || strings.Contains(strings.ToLower(it.Title), q) || strings.Contains(strings.ToLower(it.Body), q) {
			out = append(out, it)
		}
	}
	return out
}

func SortNewestFirst(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}
