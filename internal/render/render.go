// Package render turns a poll snapshot into Slack blocks. Rendering reads only
// its input, so the same snapshot always yields the same blocks.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/krakosik/pollbot/internal/model"
	"github.com/slack-go/slack"
)

const (
	ActionVote      = "vote_click"
	ActionOverflow  = "poll_overflow"
	ActionAddOption = "add_option"

	OverflowDelete           = "delete"
	OverflowRemindDM         = "remind-dm"
	OverflowListNonResponded = "list-non-responded"
	OverflowRemoveOptions    = "remove-options"
	OverflowRefresh          = "refresh"

	actionsBlockID = "poll_actions"
)

type variant func(r Renderer, poll model.Poll) []slack.Block

var variants = map[model.PollType]variant{
	model.PollTypeMeeting: meetingBlocks,
	model.PollTypeVote:    voteBlocks,
}

type Renderer struct {
	markerEmoji string
}

func New(markerEmoji string) Renderer {
	return Renderer{markerEmoji: markerEmoji}
}

// Render builds the message blocks for the poll. The poll must carry its options with votes.
func (r Renderer) Render(poll model.Poll) []slack.Block {
	build, ok := variants[poll.Type]
	if !ok {
		build = voteBlocks
	}
	return build(r, poll)
}

// Text is the notification fallback for clients that can not show blocks.
func (r Renderer) Text(poll model.Poll) string {
	if poll.Type == model.PollTypeMeeting {
		return fmt.Sprintf("Meeting times for %s", poll.Title)
	}
	return fmt.Sprintf("Poll: %s", poll.Title)
}

// SortedOptions returns the options in display order: by descending vote count
// for vote polls, keeping creation order between equal counts, and in creation
// order for meeting polls. The poll itself is left untouched.
func SortedOptions(poll model.Poll) []model.Option {
	options := make([]model.Option, len(poll.Options))
	copy(options, poll.Options)
	if poll.Type == model.PollTypeVote {
		sort.SliceStable(options, func(i, j int) bool {
			return len(options[i].Votes) > len(options[j].Votes)
		})
	}
	return options
}

func meetingBlocks(r Renderer, poll model.Poll) []slack.Block {
	header := fmt.Sprintf(
		"Meeting times for *%s*. Select all :clock1: timeslots that work! *React* with :%s: if no times work!",
		poll.Title, r.markerEmoji,
	)

	blocks := r.headerBlocks(poll, header, false)
	for _, option := range SortedOptions(poll) {
		text := fmt.Sprintf(":calendar: *%s*", option.Label())
		text += votesSuffix(option, true)
		blocks = append(blocks, optionBlock(option, text))
	}

	return append(blocks, footerBlocks()...)
}

func voteBlocks(r Renderer, poll model.Poll) []slack.Block {
	header := fmt.Sprintf(
		"Poll: *%s*.\nVote for all :ballot_box_with_check: options you want to select! React with :%s: if you don't want to vote.",
		poll.Title, r.markerEmoji,
	)

	blocks := r.headerBlocks(poll, header, true)
	for _, option := range SortedOptions(poll) {
		text := "*" + optionName(option) + "*"
		if option.Creator != nil && *option.Creator != "" {
			text += fmt.Sprintf(" added by <@%s>", *option.Creator)
		}
		if option.Description != nil && *option.Description != "" {
			text += "\n" + *option.Description
		}
		text += votesSuffix(option, poll.DisplayUsersVotes)
		blocks = append(blocks, optionBlock(option, text))
	}

	return append(blocks, footerBlocks()...)
}

// headerBlocks carries the description in the header text so a poll at full
// capacity stays within the message block limit.
func (r Renderer) headerBlocks(poll model.Poll, header string, removable bool) []slack.Block {
	if poll.Description != nil && *poll.Description != "" {
		header += "\n>" + strings.ReplaceAll(*poll.Description, "\n", "\n>")
	}
	overflow := slack.NewOverflowBlockElement(ActionOverflow, overflowOptions(removable)...)
	return []slack.Block{
		slack.NewSectionBlock(markdown(header), nil, slack.NewAccessory(overflow)),
		slack.NewDividerBlock(),
	}
}

func overflowOptions(removable bool) []*slack.OptionBlockObject {
	option := func(value, text string) *slack.OptionBlockObject {
		return slack.NewOptionBlockObject(value, plain(text), nil)
	}

	options := []*slack.OptionBlockObject{
		option(OverflowDelete, "Delete"),
		option(OverflowRemindDM, "Remind in dm"),
		option(OverflowListNonResponded, "List users not responded"),
	}
	if removable {
		options = append(options, option(OverflowRemoveOptions, "Remove options"))
	}
	return append(options, option(OverflowRefresh, "Refresh"))
}

func optionBlock(option model.Option, text string) slack.Block {
	button := slack.NewButtonBlockElement(ActionVote, fmt.Sprintf("%d", option.ID), plain("Vote"))
	return slack.NewSectionBlock(markdown(text), nil, slack.NewAccessory(button))
}

func footerBlocks() []slack.Block {
	button := slack.NewButtonBlockElement(ActionAddOption, "", plain("Add option"))
	return []slack.Block{slack.NewActionBlock(actionsBlockID, button)}
}

// votesSuffix renders the count and, when asked, the voter names in casting order.
func votesSuffix(option model.Option, withNames bool) string {
	if len(option.Votes) == 0 {
		return ""
	}

	suffix := fmt.Sprintf(" `%d`", len(option.Votes))
	if !withNames {
		return suffix
	}

	names := make([]string, 0, len(option.Votes))
	for _, vote := range option.Votes {
		name := vote.UserName
		if name == "" {
			name = model.UnknownUserName
		}
		names = append(names, "@"+name)
	}
	return suffix + "\n" + strings.Join(names, " ")
}

func optionName(option model.Option) string {
	name := option.Label()
	if option.URL != nil && *option.URL != "" {
		return fmt.Sprintf("<%s|%s>", *option.URL, name)
	}
	return name
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}
