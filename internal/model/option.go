package model

import (
	"time"
)

const MeetingTimeLayout = "Monday, Jan 2, 2006, 15:04"

// Option is a time slot of a meeting poll or a named alternative of a vote poll.
type Option struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	PollID      uint `gorm:"not null;index"`
	Time        *time.Time
	Name        *string
	URL         *string
	Description *string
	Creator     *string
	Votes       []Vote `gorm:"constraint:OnDelete:CASCADE"`
}

// Label is the human readable part of the option, regardless of the poll type.
func (o Option) Label() string {
	if o.Name != nil && *o.Name != "" {
		return *o.Name
	}
	if o.Time != nil {
		return o.Time.UTC().Format(MeetingTimeLayout)
	}
	return "No name"
}

// Matches reports whether the populated field fits the given poll type.
func (o Option) Matches(pt PollType) bool {
	switch pt {
	case PollTypeMeeting:
		return o.Time != nil && o.Name == nil
	case PollTypeVote:
		return o.Name != nil && *o.Name != "" && o.Time == nil
	default:
		return false
	}
}
