package model

import "time"

const UnknownUserName = "No name"

type Vote struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    string  `gorm:"not null;uniqueIndex:idx_vote_user_option,priority:1"`
	UserName  string  `gorm:"not null"`
	OptionID  uint    `gorm:"not null;index;uniqueIndex:idx_vote_user_option,priority:2"`
	PollID    uint    `gorm:"not null;index"`
	Option    *Option `gorm:"constraint:OnDelete:CASCADE"`
}
