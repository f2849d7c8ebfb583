package dto

import "time"

type PollEventType string

const (
	PollEventCreated        PollEventType = "created"
	PollEventVoted          PollEventType = "voted"
	PollEventOptionAdded    PollEventType = "option_added"
	PollEventOptionsRemoved PollEventType = "options_removed"
	PollEventDeleted        PollEventType = "deleted"
)

// PollEvent is fanned out to other consumers after every poll mutation.
type PollEvent struct {
	Type    PollEventType `json:"type"`
	PollID  uint          `json:"poll_id"`
	Channel string        `json:"channel"`
	TS      string        `json:"ts"`
	User    string        `json:"user"`
	At      time.Time     `json:"at"`
}
