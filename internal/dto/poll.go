package dto

import (
	"time"

	"github.com/krakosik/pollbot/internal/model"
)

// MaxOptions is the largest option count a poll may be extended to;
// adding is refused once a poll already holds more than this.
const MaxOptions = 46

type OptionInput struct {
	Time        *time.Time
	Name        *string
	URL         *string
	Description *string
}

func (o OptionInput) Option() model.Option {
	return model.Option{
		Time:        o.Time,
		Name:        o.Name,
		URL:         o.URL,
		Description: o.Description,
	}
}

type CreatePollInput struct {
	Type                 model.PollType
	Title                string
	Description          *string
	Author               string
	Channel              string
	UsersCanAddOption    bool
	DisplayUsersVotes    bool
	AddOptionDescription *string
	Options              []OptionInput
}
