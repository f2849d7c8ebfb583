package model

import (
	"time"
)

// Poll is one scheduling or voting question posted as a Slack message.
// Channel and TS stay empty until the message has been posted.
type Poll struct {
	ID                   uint `gorm:"primarykey"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Type                 PollType `gorm:"not null;default:0"`
	Title                string   `gorm:"not null"`
	Description          *string
	Author               string  `gorm:"not null;index"`
	Channel              string  `gorm:"not null;default:'';uniqueIndex:idx_poll_message,priority:1,where:ts <> ''"`
	TS                   string  `gorm:"column:ts;not null;default:'';uniqueIndex:idx_poll_message,priority:2,where:ts <> ''"`
	UsersCanAddOption    bool    `gorm:"not null;default:false"`
	DisplayUsersVotes    bool    `gorm:"not null;default:false"`
	AddOptionDescription *string
	Options              []Option `gorm:"constraint:OnDelete:CASCADE"`
	Votes                []Vote   `gorm:"constraint:OnDelete:CASCADE"`
}

func (p Poll) Published() bool {
	return p.Channel != "" && p.TS != ""
}

func (p Poll) IsAuthor(user string) bool {
	return p.Author == user
}
