package repository

import "context"

// MarkerRepository remembers how many changelog entries each chat has
// already been shown.
type MarkerRepository interface {
	Seen(ctx context.Context, chatID int64) (int, error)
	MarkSeen(ctx context.Context, chatID int64, count int) error
}
