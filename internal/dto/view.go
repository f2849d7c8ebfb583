package dto

import (
	"encoding/json"
	"fmt"
)

// ViewContext travels through a modal as private metadata, so a submission
// can be tied back to the poll message or channel it was opened from.
type ViewContext struct {
	Channel string `json:"channel"`
	TS      string `json:"ts,omitempty"`
	PollID  uint   `json:"poll_id,omitempty"`
	Slots   int    `json:"slots,omitempty"`
}

func (v ViewContext) Encode() string {
	data, err := json.Marshal(v)
	if err != nil {
		// Only plain strings and ints, marshalling can not fail.
		panic(err)
	}
	return string(data)
}

func DecodeViewContext(metadata string) (ViewContext, error) {
	var v ViewContext
	if metadata == "" {
		return v, fmt.Errorf("%w: empty view metadata", ErrInvalidArgument)
	}
	if err := json.Unmarshal([]byte(metadata), &v); err != nil {
		return v, fmt.Errorf("%w: view metadata: %v", ErrInvalidArgument, err)
	}
	return v, nil
}

// MessageRef points to a posted Slack message.
type MessageRef struct {
	Channel string
	TS      string
}
