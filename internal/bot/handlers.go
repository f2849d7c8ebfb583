package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/render"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/krakosik/pollbot/internal/view"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const (
	CommandSchedule = "/schedule"
	CommandPoll     = "/poll"
)

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	meta := dto.ViewContext{Channel: cmd.ChannelID}

	var modal slack.ModalViewRequest
	switch cmd.Command {
	case CommandSchedule:
		meta.Slots = 1
		modal = view.Schedule(meta, b.now())
	case CommandPoll:
		modal = view.VotePoll(meta)
	default:
		b.postEphemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("Unknown command %s", cmd.Command))
		return
	}

	b.openView(ctx, cmd.TriggerID, modal)
}

func (b *Bot) openView(ctx context.Context, triggerID string, modal slack.ModalViewRequest) {
	if _, err := b.slack.OpenViewContext(ctx, triggerID, modal); err != nil {
		appctx.Logger(ctx).Errorf("Failed to open %s view: %v", modal.CallbackID, err)
	}
}

func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type == slack.InteractionTypeViewSubmission {
		b.handleViewSubmission(ctx, callback)
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		var err error
		switch action.ActionID {
		case render.ActionVote:
			err = b.vote(ctx, callback, action)
		case render.ActionOverflow:
			err = b.overflow(ctx, callback, action.SelectedOption.Value)
		case render.ActionAddOption:
			err = b.openAddOption(ctx, callback)
		case view.ActionAddTimeslot:
			err = b.addTimeslot(ctx, callback)
		default:
			appctx.Logger(ctx).Debugf("Ignoring action %s", action.ActionID)
		}
		if err != nil {
			b.notify(ctx, callback.Channel.ID, callback.User.ID, err)
		}
	}
}

func (b *Bot) vote(ctx context.Context, callback slack.InteractionCallback, action *slack.BlockAction) error {
	optionID, err := strconv.ParseUint(action.Value, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: option id %q", dto.ErrInvalidArgument, action.Value)
	}

	_, err = b.services.Poll().ToggleVote(ctx,
		callback.Channel.ID, callback.Message.Timestamp, uint(optionID),
		callback.User.ID, callback.User.Name,
	)
	return err
}

func (b *Bot) overflow(ctx context.Context, callback slack.InteractionCallback, choice string) error {
	channel, ts, user := callback.Channel.ID, callback.Message.Timestamp, callback.User.ID

	polls := b.services.Poll()
	poll, err := polls.GetByMessage(ctx, channel, ts)
	if err != nil {
		return err
	}

	switch choice {
	case render.OverflowDelete:
		return polls.Delete(ctx, poll.ID, user)
	case render.OverflowRemindDM:
		_, err = b.services.Reminder().Remind(ctx, service.ReminderDirect, channel, ts, user)
		return err
	case render.OverflowListNonResponded:
		_, err = b.services.Reminder().Remind(ctx, service.ReminderList, channel, ts, user)
		return err
	case render.OverflowRemoveOptions:
		if !poll.IsAuthor(user) {
			return fmt.Errorf("%w: only the author can remove options of poll %d", dto.ErrNotAuthorized, poll.ID)
		}
		full, err := polls.Get(ctx, poll.ID)
		if err != nil {
			return err
		}
		b.openView(ctx, callback.TriggerID, view.RemoveOptions(full, dto.ViewContext{
			Channel: channel, TS: ts, PollID: poll.ID,
		}))
		return nil
	case render.OverflowRefresh:
		return polls.Refresh(ctx, poll.ID)
	default:
		return fmt.Errorf("%w: overflow choice %q", dto.ErrInvalidArgument, choice)
	}
}

func (b *Bot) openAddOption(ctx context.Context, callback slack.InteractionCallback) error {
	channel, ts, user := callback.Channel.ID, callback.Message.Timestamp, callback.User.ID

	polls := b.services.Poll()
	poll, err := polls.GetByMessage(ctx, channel, ts)
	if err != nil {
		return err
	}
	if err := polls.CheckCanAddOption(ctx, poll, user); err != nil {
		return err
	}

	b.openView(ctx, callback.TriggerID, view.AddOption(poll, dto.ViewContext{
		Channel: channel, TS: ts, PollID: poll.ID,
	}, b.now()))
	return nil
}

func (b *Bot) addTimeslot(ctx context.Context, callback slack.InteractionCallback) error {
	next, err := view.NextSchedule(callback.View, b.now())
	if err != nil {
		return err
	}
	if _, err := b.slack.UpdateViewContext(ctx, next, "", callback.View.Hash, callback.View.ID); err != nil {
		return fmt.Errorf("%w: update schedule view: %v", dto.ErrExternalFailure, err)
	}
	return nil
}

func (b *Bot) handleViewSubmission(ctx context.Context, callback slack.InteractionCallback) {
	user := callback.User.ID
	meta, err := dto.DecodeViewContext(callback.View.PrivateMetadata)
	if err != nil {
		appctx.Logger(ctx).Errorf("Dropped %s submission: %v", callback.View.CallbackID, err)
		return
	}

	polls := b.services.Poll()
	switch callback.View.CallbackID {
	case view.CallbackSchedule:
		var input dto.CreatePollInput
		if input, err = view.ParseSchedule(callback.View, user); err == nil {
			_, err = polls.Create(ctx, input)
		}
	case view.CallbackVotePoll:
		var input dto.CreatePollInput
		if input, err = view.ParseVotePoll(callback.View, user); err == nil {
			_, err = polls.Create(ctx, input)
		}
	case view.CallbackAddOption:
		err = b.submitOption(ctx, callback.View, meta, user)
	case view.CallbackRemoveOptions:
		var ids []uint
		if ids, err = view.ParseRemoveOptions(callback.View); err == nil {
			err = polls.RemoveOptions(ctx, meta.PollID, user, ids)
		}
	default:
		appctx.Logger(ctx).Debugf("Ignoring submission of view %s", callback.View.CallbackID)
	}

	if err != nil {
		b.notify(ctx, meta.Channel, user, err)
	}
}

func (b *Bot) submitOption(ctx context.Context, v slack.View, meta dto.ViewContext, user string) error {
	polls := b.services.Poll()
	poll, err := polls.Get(ctx, meta.PollID)
	if err != nil {
		return err
	}

	input, err := view.ParseAddOption(v, poll.Type)
	if err != nil {
		return err
	}
	_, err = polls.AddOption(ctx, poll.ID, user, input)
	return err
}

// handleMention sends a reminder to the thread when the bot is asked to in a poll thread.
func (b *Bot) handleMention(ctx context.Context, mention *slackevents.AppMentionEvent) {
	if mention.BotID != "" {
		return
	}
	if mention.ThreadTimeStamp == "" || !strings.Contains(strings.ToLower(mention.Text), "remind") {
		b.postEphemeral(ctx, mention.Channel, mention.User, mentionHelpText)
		return
	}

	if _, err := b.services.Poll().GetByMessage(ctx, mention.Channel, mention.ThreadTimeStamp); err != nil {
		b.notify(ctx, mention.Channel, mention.User, err)
		return
	}
	if _, err := b.services.Reminder().Remind(ctx, service.ReminderBroadcast,
		mention.Channel, mention.ThreadTimeStamp, mention.User); err != nil {
		b.notify(ctx, mention.Channel, mention.User, err)
	}
}
