package service

import (
	"fmt"
	"testing"

	"github.com/hard-gainer/pollwatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pollWithAnswers(answers ...model.Answer) *model.Post {
	return &model.Post{Questions: []model.Question{{Answers: answers}}}
}

func TestSelectOptionWrapsIndex(t *testing.T) {
	for n := 1; n <= 6; n++ {
		answers := make([]model.Answer, n)
		for i := range answers {
			answers[i] = model.Answer{ID: fmt.Sprintf("opt-%d", i)}
		}
		post := pollWithAnswers(answers...)

		for k := 0; k <= 20; k++ {
			sel, err := SelectOption(post, k)
			require.NoError(t, err)
			assert.Equal(t, k%n, sel.Index, "n=%d k=%d", n, k)
			assert.Equal(t, fmt.Sprintf("opt-%d", k%n), sel.Selected().ID)
		}
	}
}

func TestSelectOptionSkipsDeleted(t *testing.T) {
	post := pollWithAnswers(
		model.Answer{ID: "a", Text: "Yes", Deleted: 1},
		model.Answer{ID: "b", Text: "No"},
		model.Answer{ID: "c", Text: "No"},
	)

	sel, err := SelectOption(post, 1)
	require.NoError(t, err)
	assert.Len(t, sel.Options, 2)
	assert.Equal(t, "c", sel.Selected().ID)
}

func TestSelectOptionErrors(t *testing.T) {
	_, err := SelectOption(&model.Post{}, 0)
	assert.ErrorIs(t, err, ErrNoOptions)

	_, err = SelectOption(pollWithAnswers(), 0)
	assert.ErrorIs(t, err, ErrNoOptions)

	_, err = SelectOption(pollWithAnswers(model.Answer{ID: "a", Deleted: 1}), 0)
	assert.ErrorIs(t, err, ErrNoActiveOptions)
}

func TestFilters(t *testing.T) {
	post := &model.Post{Type: "poll", Status: "active"}
	assert.True(t, IsPoll(post))
	assert.True(t, IsPollOpen(post))
	assert.False(t, HasUserVoted(post))

	post.Data.HasVoted = []any{"a"}
	assert.True(t, HasUserVoted(post))

	post.Config.PollIsClosed = 1
	assert.False(t, IsPollOpen(post))

	assert.False(t, IsPoll(&model.Post{Type: "note"}))
}
