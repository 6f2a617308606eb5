package notification

import "fmt"

// MessageSender represents an interface for sending messages
type MessageSender interface {
	PostMessage(channelID, message string) error
}

// ChannelNotifier sends every message to one channel
type ChannelNotifier struct {
	sender    MessageSender
	channelID string
}

// NewChannelNotifier binds a sender to a channel
func NewChannelNotifier(sender MessageSender, channelID string) *ChannelNotifier {
	return &ChannelNotifier{
		sender:    sender,
		channelID: channelID,
	}
}

// Notify posts message to the bound channel
func (n *ChannelNotifier) Notify(message string) error {
	if err := n.sender.PostMessage(n.channelID, message); err != nil {
		return fmt.Errorf("failed to notify channel %s: %w", n.channelID, err)
	}
	return nil
}
