package piazza

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hard-gainer/pollwatch/internal/model"
	"github.com/tidwall/gjson"
)

// Network is a class-bound view of a Client
type Network struct {
	client *Client
	nid    string
}

// GetFeed returns one page of the class feed
func (n *Network) GetFeed(ctx context.Context, limit, offset int) ([]model.FeedItem, error) {
	raw, err := n.client.result(ctx, "network.get_my_feed", n.nid, map[string]any{
		"offset": offset,
		"limit":  limit,
		"sort":   "updated",
	})
	if err != nil {
		return nil, err
	}

	var page struct {
		Feed []model.FeedItem `json:"feed"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	return page.Feed, nil
}

// GetPost returns the full record of a post
func (n *Network) GetPost(ctx context.Context, cid string) (*model.Post, error) {
	raw, err := n.client.result(ctx, "content.get", n.nid, map[string]any{
		"cid": cid,
	})
	if err != nil {
		return nil, err
	}

	var post model.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", cid, err)
	}

	return &post, nil
}

// Vote submits the selected option ids for a poll. The envelope is returned
// as is; callers inspect VoteResponse.Err for a service-reported failure.
func (n *Network) Vote(ctx context.Context, cid string, optionIDs []string) (*VoteResponse, error) {
	raw, err := n.client.Request(ctx, "content.vote", n.nid, map[string]any{
		"cid":   cid,
		"votes": optionIDs,
	})
	if err != nil {
		return nil, err
	}

	return &VoteResponse{Raw: raw}, nil
}

// VoteResponse is the raw content.vote envelope
type VoteResponse struct {
	Raw json.RawMessage
}

// Err returns the error text when the envelope carries a non-null error
func (r *VoteResponse) Err() (string, bool) {
	errField := gjson.GetBytes(r.Raw, "error")
	if !errField.Exists() || errField.Type == gjson.Null {
		return "", false
	}
	if msg := errField.String(); msg != "" {
		return msg, true
	}
	return "Unknown error", true
}

// TotalVotes returns result.total_votes or "unknown"
func (r *VoteResponse) TotalVotes() string {
	total := gjson.GetBytes(r.Raw, "result.total_votes")
	if !total.Exists() {
		return "unknown"
	}
	return total.String()
}
