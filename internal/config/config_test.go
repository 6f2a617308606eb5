package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PIAZZA_EMAIL", "student@example.edu")
	t.Setenv("PIAZZA_PASSWORD", "hunter2")
	t.Setenv("PIAZZA_CLASS_ID", "jx7ab2cd4ef")
}

func TestNewConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("TARANTOOL_ADDR", "")
	t.Setenv("MATTERMOST_URL", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "jx7ab2cd4ef", cfg.ClassID)
	assert.Equal(t, "https://piazza.com", cfg.BaseURL)
	assert.Equal(t, 0, cfg.PollAnswerIndex)
	assert.Equal(t, 60*time.Second, cfg.CheckInterval())
	assert.Equal(t, 10, cfg.FeedPageSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.TarantoolEnabled())
	assert.False(t, cfg.MattermostEnabled())
}

func TestNewConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_ANSWER_INDEX", "3")
	t.Setenv("CHECK_INTERVAL", "90")
	t.Setenv("TARANTOOL_ADDR", "localhost:3301")
	t.Setenv("MATTERMOST_URL", "http://localhost:8065")
	t.Setenv("MATTERMOST_TOKEN", "token")
	t.Setenv("MATTERMOST_CHANNEL_ID", "town-square")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.PollAnswerIndex)
	assert.Equal(t, 90*time.Second, cfg.CheckInterval())
	assert.True(t, cfg.TarantoolEnabled())
	assert.True(t, cfg.MattermostEnabled())
}

func TestNewConfigMissingCredentials(t *testing.T) {
	t.Setenv("PIAZZA_EMAIL", "")
	t.Setenv("PIAZZA_PASSWORD", "")
	t.Setenv("PIAZZA_CLASS_ID", "")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigRejectsNegativeIndex(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_ANSWER_INDEX", "-1")

	_, err := NewConfig()
	assert.ErrorContains(t, err, "POLL_ANSWER_INDEX")
}

func TestCheckIntervalFormats(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"60", 60 * time.Second},
		{"90s", 90 * time.Second},
		{"2m", 2 * time.Minute},
		{"1.5", 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CHECK_INTERVAL", tt.value)

			cfg, err := NewConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.CheckInterval())
		})
	}
}

func TestCheckIntervalRejected(t *testing.T) {
	for _, value := range []string{"soon", "0", "-5s"} {
		t.Run(value, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CHECK_INTERVAL", value)

			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
