package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hard-gainer/pollwatch/internal/model"
)

// answerPoll selects an option and submits the vote. It reports whether the
// vote was accepted; the error is non-nil only when ctx is cancelled.
func (s *Service) answerPoll(ctx context.Context, log *slog.Logger, post *model.Post) (bool, error) {
	subject := post.Subject("Untitled Poll")
	log = log.With("post_id", post.ID)
	log.Info("Attempting to answer poll", "subject", subject)

	selection, err := SelectOption(post, s.opts.PollAnswerIndex)
	if err != nil {
		log.Error("Cannot answer poll", "error", err)
		s.markAnswered(ctx, log, post.ID)
		return false, nil
	}

	for i, opt := range selection.Options {
		log.Info("Poll option",
			"index", i,
			"text", opt.Text,
			"option_id", opt.ID,
			"selected", i == selection.Index,
		)
	}
	selected := selection.Selected()

	delay, err := s.pacer.Between(ctx, voteDelayMin, voteDelayMax)
	if err != nil {
		return false, err
	}
	log.Info("Submitting vote", "waited", delay)

	resp, err := s.api.Vote(ctx, post.ID, []string{selected.ID})
	if err != nil {
		if isCancelled(ctx, err) {
			return false, err
		}

		log.Error("Vote request failed", "error", truncate(err.Error(), 300))
		if VoteFailureResolves(err) {
			log.Info("Marking as answered (already voted or closed)")
			s.markAnswered(ctx, log, post.ID)
		} else {
			s.recordFailure(ctx, log, post.ID)
		}
		return false, nil
	}

	if msg, failed := resp.Err(); failed {
		log.Warn("Vote rejected", "error", msg)
		if VoteRejectionResolves(msg) {
			log.Info("Marking as answered (already voted)")
			s.markAnswered(ctx, log, post.ID)
		} else {
			s.recordFailure(ctx, log, post.ID)
		}
		return false, nil
	}

	totalVotes := resp.TotalVotes()
	log.Info("Poll answered",
		"selected_text", selected.Text,
		"selected_id", selected.ID,
		"total_votes", totalVotes,
	)
	log.Debug("Vote response", "response", truncate(string(resp.Raw), 500))

	s.markAnswered(ctx, log, post.ID)

	message := fmt.Sprintf("Voted **%s** on poll **%s** (total votes: %s)", selected.Text, subject, totalVotes)
	if err := s.NotifyChannel(message); err != nil {
		log.Warn("Failed to send vote notification", "error", err)
	}

	return true, nil
}
