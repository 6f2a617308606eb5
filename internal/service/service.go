package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/hard-gainer/pollwatch/internal/db"
	"github.com/hard-gainer/pollwatch/internal/model"
	"github.com/hard-gainer/pollwatch/internal/piazza"
)

// PiazzaAPI is the class-bound remote the watcher talks to
type PiazzaAPI interface {
	GetFeed(ctx context.Context, limit, offset int) ([]model.FeedItem, error)
	GetPost(ctx context.Context, cid string) (*model.Post, error)
	Vote(ctx context.Context, cid string, optionIDs []string) (*piazza.VoteResponse, error)
}

// Options tunes the watcher
type Options struct {
	ClassID         string
	PollAnswerIndex int
	CheckInterval   time.Duration
	FeedPageSize    int
	// MaxVoteAttempts caps recoverable vote failures per poll, 0 means unlimited
	MaxVoteAttempts int

	RateLimitCooldown time.Duration
	Pacer             *Pacer
}

// Notifier announces successful votes
type Notifier interface {
	Notify(message string) error
}

// Service watches a class feed and votes on open polls
type Service struct {
	api      PiazzaAPI
	answered db.AnsweredStore
	notifier Notifier
	pacer    *Pacer
	opts     Options
	attempts map[string]int
}

// NewService creates an instance of service
func NewService(api PiazzaAPI, answered db.AnsweredStore, opts Options) *Service {
	if opts.FeedPageSize <= 0 {
		opts.FeedPageSize = 10
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 60 * time.Second
	}
	if opts.RateLimitCooldown <= 0 {
		opts.RateLimitCooldown = rateLimitCooldown
	}

	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewPacer()
	}

	return &Service{
		api:      api,
		answered: answered,
		pacer:    pacer,
		opts:     opts,
		attempts: make(map[string]int),
	}
}

// SetNotifier sets or replaces the notifier after the service is created
func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// NotifyChannel sends a message if a notifier is set
func (s *Service) NotifyChannel(message string) error {
	if s.notifier == nil {
		slog.Debug("Notifier not configured, message not sent")
		return nil
	}

	return s.notifier.Notify(message)
}

// Run scans the feed until ctx is cancelled. Cancellation is a clean stop;
// any other error, including a recovered panic, ends the loop with an error.
func (s *Service) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Unexpected error", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("unexpected panic: %v", r)
		}
	}()

	slog.Info("Piazza poll bot started",
		"class_id", s.opts.ClassID,
		"answer_index", s.opts.PollAnswerIndex,
		"check_interval", s.opts.CheckInterval,
	)

	for {
		if _, err := s.CheckForPolls(ctx); err != nil {
			if ctx.Err() != nil {
				slog.Info("Bot stopped by user")
				return nil
			}
			return err
		}

		wait, err := s.nextCheck(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Bot stopped by user")
				return nil
			}
			return err
		}
		slog.Debug("Woke up for next check", "waited", wait)
	}
}

func (s *Service) nextCheck(ctx context.Context) (time.Duration, error) {
	base := s.opts.CheckInterval
	spread := time.Duration(float64(base) * intervalVariation)
	slog.Info("Waiting before next check",
		"base", base,
		"min", base-spread,
		"max", base+spread,
	)
	return s.pacer.Around(ctx, base, intervalVariation)
}

// CheckForPolls runs a single scan cycle. The returned error is non-nil
// only when ctx is cancelled mid-cycle.
func (s *Service) CheckForPolls(ctx context.Context) (model.ScanSummary, error) {
	log := slog.With("scan_id", uuid.New().String())
	log.Info("Checking for new polls")

	var summary model.ScanSummary

	posts, err := s.fetchPosts(ctx, log)
	summary.PostsFetched = len(posts)
	if err != nil {
		return summary, err
	}
	log.Info("Total posts retrieved", "count", len(posts))

	for _, post := range posts {
		if !IsPoll(post) {
			continue
		}

		summary.PollsFound++
		log.Info("Found poll",
			"number", summary.PollsFound,
			"subject", post.Subject("Untitled"),
			"post_id", post.ID,
			"status", post.Status,
			"poll_is_closed", post.ClosedFlag(),
		)

		if s.hasAnsweredPoll(ctx, log, post.ID) {
			log.Info("Already in answered list, skipping", "post_id", post.ID)
			summary.AlreadyAnswered++
			continue
		}

		if HasUserVoted(post) {
			log.Info("User has already voted, skipping", "post_id", post.ID)
			s.markAnswered(ctx, log, post.ID)
			summary.AlreadyVoted++
			continue
		}

		if !IsPollOpen(post) {
			log.Info("Poll is closed, skipping", "post_id", post.ID)
			s.markAnswered(ctx, log, post.ID)
			summary.Closed++
			continue
		}

		log.Info("New open poll, attempting to answer", "post_id", post.ID)
		summary.NewPolls++

		answered, err := s.answerPoll(ctx, log, post)
		if err != nil {
			return summary, err
		}
		if answered {
			summary.Answered++
		}

		delay, err := s.pacer.Between(ctx, voteDelayMin, voteDelayMax)
		if err != nil {
			return summary, err
		}
		log.Debug("Waited before checking next poll", "delay", delay)
	}

	log.Info("Scan summary",
		"polls_found", summary.PollsFound,
		"new_polls", summary.NewPolls,
		"answered", summary.Answered,
		"already_answered", summary.AlreadyAnswered,
		"already_voted", summary.AlreadyVoted,
		"closed", summary.Closed,
	)

	return summary, nil
}

func (s *Service) hasAnsweredPoll(ctx context.Context, log *slog.Logger, postID string) bool {
	ok, err := s.answered.Contains(ctx, postID)
	if err != nil {
		log.Error("Failed to check answered polls", "post_id", postID, "error", err)
		return false
	}
	return ok
}

func (s *Service) markAnswered(ctx context.Context, log *slog.Logger, postID string) {
	delete(s.attempts, postID)
	if err := s.answered.Add(ctx, postID); err != nil {
		log.Error("Failed to record answered poll", "post_id", postID, "error", err)
	}
}

// recordFailure counts a recoverable vote failure and gives up on the poll
// once MaxVoteAttempts is reached
func (s *Service) recordFailure(ctx context.Context, log *slog.Logger, postID string) {
	if s.opts.MaxVoteAttempts <= 0 {
		return
	}

	s.attempts[postID]++
	if s.attempts[postID] >= s.opts.MaxVoteAttempts {
		log.Warn("Giving up on poll after repeated failures",
			"post_id", postID,
			"attempts", s.attempts[postID],
		)
		s.markAnswered(ctx, log, postID)
	}
}

func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
