package service

import (
	"github.com/hard-gainer/pollwatch/internal/model"
)

// IsPoll reports whether the post is a poll
func IsPoll(post *model.Post) bool {
	return post.Type == model.PostTypePoll
}

// HasUserVoted reports whether the account already voted on the poll
func HasUserVoted(post *model.Post) bool {
	return len(post.Data.HasVoted) > 0
}

// IsPollOpen reports whether the poll still accepts votes
func IsPollOpen(post *model.Post) bool {
	return post.Status == model.PostStatusActive && !post.PollIsClosed()
}
