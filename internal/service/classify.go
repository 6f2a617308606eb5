package service

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/hard-gainer/pollwatch/internal/piazza"
)

// Substring tables for the service's free-text error messages. The remote
// API has no error codes, so these are the only signal available.
var (
	rateLimitMarkers     = []string{"too fast", "wait"}
	voteRejectedResolved = []string{"already", "voted"}
	voteFailureResolved  = []string{"already", "voted", "closed", "expired"}
)

// IsRateLimited reports whether err looks like a "too fast" rejection.
// Timeouts never count, and service errors are judged by their message only.
func IsRateLimited(err error) bool {
	if err == nil || isTimeout(err) {
		return false
	}

	var reqErr *piazza.RequestError
	if errors.As(err, &reqErr) {
		return containsAny(reqErr.Message, rateLimitMarkers)
	}
	return containsAny(err.Error(), rateLimitMarkers)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// VoteRejectionResolves reports whether a vote error field means the poll
// is already settled for this account
func VoteRejectionResolves(msg string) bool {
	return containsAny(msg, voteRejectedResolved)
}

// VoteFailureResolves reports whether a failed vote request means the poll
// is voted, closed or expired
func VoteFailureResolves(err error) bool {
	return err != nil && containsAny(err.Error(), voteFailureResolved)
}

func containsAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
