// Package view builds the modals of the bot and reads their submitted state.
package view

import (
	"github.com/slack-go/slack"
)

const (
	CallbackSchedule      = "schedule_view"
	CallbackVotePoll      = "vote_poll_view"
	CallbackAddOption     = "add_option_view"
	CallbackRemoveOptions = "remove_options_view"

	ActionAddTimeslot = "add_timeslot"

	actionDate        = "select-date"
	actionTime        = "select-time"
	actionText        = "text"
	actionSettings    = "settings"
	actionOptions     = "options"
	blockTitle        = "title"
	blockDescription  = "description"
	blockOptions      = "options"
	blockOptionsHint  = "add_option_description"
	blockSettings     = "settings"
	blockName         = "name"
	blockURL          = "url"
	blockDate         = "date"
	blockTime         = "time"
	blockRemove       = "remove"
	blockAddTimeslot  = "add_timeslot_block"
	settingShowVotes  = "display_votes"
	settingOpenToAll  = "users_can_add_option"
	timeslotBlockName = "timeslot-%d"

	// MaxTimeslots bounds the schedule modal, Slack allows at most 100 blocks per view.
	MaxTimeslots = 40
)

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func modal(callbackID, title, submit string, metadata string, blocks ...slack.Block) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      callbackID,
		Title:           plain(title),
		Submit:          plain(submit),
		Close:           plain("Cancel"),
		PrivateMetadata: metadata,
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
}

func textInput(blockID, label string, multiline, optional bool, initial string) *slack.InputBlock {
	element := slack.NewPlainTextInputBlockElement(nil, actionText).WithMultiline(multiline)
	if initial != "" {
		element = element.WithInitialValue(initial)
	}
	return slack.NewInputBlock(blockID, plain(label), nil, element).WithOptional(optional)
}
