// Package clienttest provides an in-memory Slack API for tests.
package clienttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack"
)

// Message is a decoded chat message sent through the fake.
type Message struct {
	Channel  string
	TS       string
	User     string
	Text     string
	ThreadTS string
	Blocks   string
}

type Reaction struct {
	Name    string
	Channel string
	TS      string
}

// Slack records every call and serves canned reactions, members and users.
// The zero value is not usable, call NewSlack.
type Slack struct {
	mu sync.Mutex

	Posted      []Message
	Ephemerals  []Message
	Updated     []Message
	Deleted     []Message
	Added       []Reaction
	Opened      []slack.ModalViewRequest
	ViewUpdates []slack.ModalViewRequest
	DMs         map[string]string

	Reactions      map[string][]slack.ItemReaction
	Members        []string
	MemberPageSize int
	Users          []slack.User

	PostErr      error
	UpdateErr    error
	DeleteErr    error
	ReactionsErr error
	MembersErr   error
	UsersErr     error
	PermalinkErr error
	OpenIMErr    error

	MemberCalls int
	nextTS      int
}

func NewSlack() *Slack {
	return &Slack{
		Reactions:      make(map[string][]slack.ItemReaction),
		DMs:            make(map[string]string),
		MemberPageSize: 100,
	}
}

func key(channel, ts string) string {
	return channel + "/" + ts
}

func decode(channel string, options ...slack.MsgOption) Message {
	_, values, _ := slack.UnsafeApplyMsgOptions("", channel, "", options...)
	return Message{
		Channel:  channel,
		Text:     values.Get("text"),
		ThreadTS: values.Get("thread_ts"),
		Blocks:   values.Get("blocks"),
	}
}

// SetReactions replaces the reactions on a message.
func (s *Slack) SetReactions(channel, ts string, reactions ...slack.ItemReaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reactions[key(channel, ts)] = reactions
}

func (s *Slack) PostedMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Posted...)
}

func (s *Slack) EphemeralMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Ephemerals...)
}

func (s *Slack) UpdatedMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Updated...)
}

func (s *Slack) DeletedMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Deleted...)
}

func (s *Slack) AuthTestContext(context.Context) (*slack.AuthTestResponse, error) {
	return &slack.AuthTestResponse{UserID: "UBOT", User: "pollbot", TeamID: "T1"}, nil
}

func (s *Slack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PostErr != nil {
		return "", "", s.PostErr
	}
	s.nextTS++
	msg := decode(channelID, options...)
	msg.TS = fmt.Sprintf("1700000000.%06d", s.nextTS)
	s.Posted = append(s.Posted, msg)
	return channelID, msg.TS, nil
}

func (s *Slack) PostEphemeralContext(_ context.Context, channelID, userID string, options ...slack.MsgOption) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := decode(channelID, options...)
	msg.User = userID
	s.Ephemerals = append(s.Ephemerals, msg)
	return "", nil
}

func (s *Slack) UpdateMessageContext(_ context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return "", "", "", s.UpdateErr
	}
	msg := decode(channelID, options...)
	msg.TS = timestamp
	s.Updated = append(s.Updated, msg)
	return channelID, timestamp, msg.Text, nil
}

func (s *Slack) DeleteMessageContext(_ context.Context, channel, messageTimestamp string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return "", "", s.DeleteErr
	}
	s.Deleted = append(s.Deleted, Message{Channel: channel, TS: messageTimestamp})
	return channel, messageTimestamp, nil
}

func (s *Slack) AddReactionContext(_ context.Context, name string, item slack.ItemRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Added = append(s.Added, Reaction{Name: name, Channel: item.Channel, TS: item.Timestamp})
	return nil
}

func (s *Slack) GetReactionsContext(_ context.Context, item slack.ItemRef, _ slack.GetReactionsParameters) ([]slack.ItemReaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReactionsErr != nil {
		return nil, s.ReactionsErr
	}
	return s.Reactions[key(item.Channel, item.Timestamp)], nil
}

func (s *Slack) GetPermalinkContext(_ context.Context, params *slack.PermalinkParameters) (string, error) {
	if s.PermalinkErr != nil {
		return "", s.PermalinkErr
	}
	return fmt.Sprintf("https://example.slack.com/archives/%s/p%s", params.Channel, params.Ts), nil
}

// GetUsersInConversationContext pages through Members, using the offset as cursor.
func (s *Slack) GetUsersInConversationContext(_ context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MemberCalls++
	if s.MembersErr != nil {
		return nil, "", s.MembersErr
	}

	start := 0
	if params.Cursor != "" {
		if _, err := fmt.Sscanf(params.Cursor, "%d", &start); err != nil {
			return nil, "", err
		}
	}
	size := s.MemberPageSize
	if size <= 0 {
		size = len(s.Members)
	}
	end := start + size
	if end >= len(s.Members) {
		return append([]string(nil), s.Members[start:]...), "", nil
	}
	return append([]string(nil), s.Members[start:end]...), fmt.Sprintf("%d", end), nil
}

func (s *Slack) GetUsersContext(context.Context, ...slack.GetUsersOption) ([]slack.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UsersErr != nil {
		return nil, s.UsersErr
	}
	return append([]slack.User(nil), s.Users...), nil
}

func (s *Slack) OpenConversationContext(_ context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.OpenIMErr != nil {
		return nil, false, false, s.OpenIMErr
	}
	channel := &slack.Channel{}
	channel.ID = "D" + params.Users[0]
	s.DMs[params.Users[0]] = channel.ID
	return channel, false, false, nil
}

func (s *Slack) OpenViewContext(_ context.Context, _ string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Opened = append(s.Opened, view)
	return &slack.ViewResponse{}, nil
}

func (s *Slack) UpdateViewContext(_ context.Context, view slack.ModalViewRequest, _, _, _ string) (*slack.ViewResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ViewUpdates = append(s.ViewUpdates, view)
	return &slack.ViewResponse{}, nil
}
