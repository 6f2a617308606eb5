package service

import (
	"errors"

	"github.com/hard-gainer/pollwatch/internal/model"
)

// selector errors
var (
	ErrNoOptions       = errors.New("could not find poll options")
	ErrNoActiveOptions = errors.New("no active options found")
)

// Selection is the outcome of picking an option from a poll
type Selection struct {
	Options []model.Answer
	Index   int
}

// Selected returns the chosen option
func (s Selection) Selected() model.Answer {
	return s.Options[s.Index]
}

// SelectOption picks the preferred option among the first question's
// non-deleted answers, wrapping the index around the number of options
func SelectOption(post *model.Post, preferred int) (Selection, error) {
	if len(post.Questions) == 0 || len(post.Questions[0].Answers) == 0 {
		return Selection{}, ErrNoOptions
	}

	active := make([]model.Answer, 0, len(post.Questions[0].Answers))
	for _, answer := range post.Questions[0].Answers {
		if !answer.Deleted.IsSet() {
			active = append(active, answer)
		}
	}

	if len(active) == 0 {
		return Selection{}, ErrNoActiveOptions
	}

	n := len(active)
	return Selection{
		Options: active,
		Index:   ((preferred % n) + n) % n,
	}, nil
}
