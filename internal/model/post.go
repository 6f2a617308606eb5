package model

// PostTypePoll is the post type carried by polls
const PostTypePoll = "poll"

// PostStatusActive is the status of a post that still accepts responses
const PostStatusActive = "active"

// Post is a single class post as returned by content.get
type Post struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Config    PostConfig `json:"config"`
	Data      PostData   `json:"data"`
	Questions []Question `json:"questions"`
	History   []Revision `json:"history"`
}

// PostConfig holds the poll settings of a post
type PostConfig struct {
	PollIsClosed Flag `json:"poll_is_closed"`
}

// PostData holds per-viewer poll state
type PostData struct {
	HasVoted []any `json:"has_voted"`
}

// Question is a poll question with its answer options
type Question struct {
	Answers []Answer `json:"answers"`
}

// Answer is a selectable poll option
type Answer struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Deleted Flag   `json:"deleted"`
}

// Revision is one entry of a post's edit history
type Revision struct {
	Subject string `json:"subject"`
}

// FeedItem is an entry of the class feed
type FeedItem struct {
	ID string `json:"id"`
}

// Subject returns the subject of the latest revision or fallback
func (p *Post) Subject(fallback string) string {
	if len(p.History) == 0 || p.History[0].Subject == "" {
		return fallback
	}
	return p.History[0].Subject
}

// PollIsClosed reports whether config.poll_is_closed holds the closed sentinel
func (p *Post) PollIsClosed() bool {
	return p.Config.PollIsClosed == 1
}

// ClosedFlag returns the poll_is_closed value for logging
func (p *Post) ClosedFlag() float64 {
	return float64(p.Config.PollIsClosed)
}
