package view

import (
	"fmt"
	"time"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/slack-go/slack"
)

// Schedule is the meeting poll form with one date and time picker pair per slot.
func Schedule(meta dto.ViewContext, now time.Time) slack.ModalViewRequest {
	if meta.Slots < 1 {
		meta.Slots = 1
	}
	if meta.Slots > MaxTimeslots {
		meta.Slots = MaxTimeslots
	}

	now = now.UTC()
	blocks := []slack.Block{
		textInput(blockTitle, "Title", false, true, ""),
		textInput(blockDescription, "Description", true, true, ""),
		slack.NewDividerBlock(),
	}
	for i := 0; i < meta.Slots; i++ {
		date := slack.NewDatePickerBlockElement(actionDate)
		date.InitialDate = now.Format("2006-01-02")
		clock := slack.NewTimePickerBlockElement(actionTime)
		clock.InitialTime = now.Format("15:04")
		blocks = append(blocks, slack.NewActionBlock(fmt.Sprintf(timeslotBlockName, i), date, clock))
	}
	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewActionBlock(blockAddTimeslot,
			slack.NewButtonBlockElement(ActionAddTimeslot, fmt.Sprintf("%d", meta.Slots), plain("Add timeslot")),
		),
	)

	return modal(CallbackSchedule, "Schedule meeting", "Create", meta.Encode(), blocks...)
}

func VotePoll(meta dto.ViewContext) slack.ModalViewRequest {
	settings := slack.NewCheckboxGroupsBlockElement(actionSettings,
		slack.NewOptionBlockObject(settingShowVotes, plain("Display who voted for what"), nil),
		slack.NewOptionBlockObject(settingOpenToAll, plain("Everyone can add options"), nil),
	)

	return modal(CallbackVotePoll, "Create poll", "Create", meta.Encode(),
		textInput(blockTitle, "Title", false, true, ""),
		textInput(blockDescription, "Description", true, true, ""),
		textInput(blockOptions, "Options, one per line", true, false, ""),
		textInput(blockOptionsHint, "Instructions for adding options", true, true, ""),
		slack.NewInputBlock(blockSettings, plain("Settings"), nil, settings).WithOptional(true),
	)
}

// AddOption asks for a time slot on meeting polls and for a named alternative otherwise.
func AddOption(poll model.Poll, meta dto.ViewContext, now time.Time) slack.ModalViewRequest {
	var blocks []slack.Block
	if poll.AddOptionDescription != nil && *poll.AddOptionDescription != "" {
		blocks = append(blocks, slack.NewSectionBlock(markdown(*poll.AddOptionDescription), nil, nil))
	}

	if poll.Type == model.PollTypeMeeting {
		now = now.UTC()
		date := slack.NewDatePickerBlockElement(actionDate)
		date.InitialDate = now.Format("2006-01-02")
		clock := slack.NewTimePickerBlockElement(actionTime)
		clock.InitialTime = now.Format("15:04")
		blocks = append(blocks,
			slack.NewInputBlock(blockDate, plain("Date"), nil, date),
			slack.NewInputBlock(blockTime, plain("Time"), nil, clock),
		)
	} else {
		blocks = append(blocks,
			textInput(blockName, "Name", false, false, ""),
			textInput(blockDescription, "Description", true, true, ""),
			textInput(blockURL, "Link", false, true, ""),
		)
	}

	return modal(CallbackAddOption, "Add option", "Add", meta.Encode(), blocks...)
}

// RemoveOptions lists the options of the poll for the author to pick from.
func RemoveOptions(poll model.Poll, meta dto.ViewContext) slack.ModalViewRequest {
	options := make([]*slack.OptionBlockObject, 0, len(poll.Options))
	for _, option := range poll.Options {
		label := option.Label()
		if runes := []rune(label); len(runes) > 75 {
			label = string(runes[:72]) + "..."
		}
		options = append(options, slack.NewOptionBlockObject(fmt.Sprintf("%d", option.ID), plain(label), nil))
	}

	selectElement := slack.NewOptionsMultiSelectBlockElement(
		slack.MultiOptTypeStatic, plain("Options to remove"), actionOptions, options...,
	)

	return modal(CallbackRemoveOptions, "Remove options", "Remove", meta.Encode(),
		slack.NewInputBlock(blockRemove, plain("Options"), nil, selectElement),
	)
}
