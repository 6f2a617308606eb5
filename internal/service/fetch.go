package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hard-gainer/pollwatch/internal/model"
)

// fetchPosts resolves the first feed page into full posts. Posts that cannot
// be fetched are logged and left out; only cancellation is returned.
func (s *Service) fetchPosts(ctx context.Context, log *slog.Logger) ([]*model.Post, error) {
	items, err := s.api.GetFeed(ctx, s.opts.FeedPageSize, 0)
	if err != nil {
		if isCancelled(ctx, err) {
			return nil, err
		}
		log.Error("Error fetching feed", "error", err)
		return nil, nil
	}

	log.Info("Found posts in feed", "count", len(items))

	posts := make([]*model.Post, 0, len(items))
	for _, item := range items {
		if _, err := s.pacer.Between(ctx, postFetchDelayMin, postFetchDelayMax); err != nil {
			return posts, err
		}

		post, err := s.fetchPost(ctx, log, item.ID)
		if err != nil {
			if isCancelled(ctx, err) {
				return posts, err
			}
			continue
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// fetchPost gets a single post, retrying once after a cooldown when the
// service says we are going too fast
func (s *Service) fetchPost(ctx context.Context, log *slog.Logger, postID string) (*model.Post, error) {
	attempt := 0

	post, err := backoff.Retry(ctx,
		func() (*model.Post, error) {
			attempt++
			post, err := s.api.GetPost(ctx, postID)
			if err == nil {
				return post, nil
			}
			if attempt == 1 && IsRateLimited(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.opts.RateLimitCooldown)),
		backoff.WithMaxTries(2),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("Rate limit hit, waiting before retry", "post_id", postID, "delay", next)
		}),
	)
	if err != nil {
		if isCancelled(ctx, err) {
			return nil, err
		}
		if attempt > 1 {
			log.Warn("Could not fetch post after retry, skipping", "post_id", postID)
		} else {
			log.Error("Error fetching post", "post_id", postID, "error", truncate(err.Error(), 100))
		}
		return nil, err
	}

	return post, nil
}
