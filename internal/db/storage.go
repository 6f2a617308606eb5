package db

import (
	"context"
)

// AnsweredStore remembers posts that need no further attention
type AnsweredStore interface {
	// Contains reports whether the post has been resolved
	Contains(ctx context.Context, postID string) (bool, error)
	// Add marks the post resolved; adding twice is a no-op
	Add(ctx context.Context, postID string) error
	// Len returns the number of resolved posts
	Len(ctx context.Context) (int, error)
	// Close releases the underlying resources
	Close() error
}
