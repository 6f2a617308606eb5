package model

// ScanSummary counts what a single scan cycle did
type ScanSummary struct {
	PostsFetched    int
	PollsFound      int
	NewPolls        int
	Answered        int
	AlreadyAnswered int
	AlreadyVoted    int
	Closed          int
}
