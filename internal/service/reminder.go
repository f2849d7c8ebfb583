package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/krakosik/pollbot/internal/client"
	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/slack-go/slack"
)

type ReminderMode string

const (
	// ReminderBroadcast mentions everyone in the poll thread.
	ReminderBroadcast ReminderMode = "broadcast"
	// ReminderDirect messages each user and reports back to the invoker.
	ReminderDirect ReminderMode = "direct"
	// ReminderList only tells the invoker who is missing.
	ReminderList ReminderMode = "list"

	everyoneRespondedText = "Looks like all users have responded!"
)

type ReminderService interface {
	// Remind notifies the users who have not responded to the poll at ts and
	// returns them. Without any, the invoker is told that everyone responded.
	Remind(ctx context.Context, mode ReminderMode, channel, ts, invoker string) ([]slack.User, error)
}

type reminderService struct {
	responses   ResponseService
	slack       client.SlackAPI
	markerEmoji string
}

func newReminderService(responses ResponseService, slackAPI client.SlackAPI, markerEmoji string) ReminderService {
	return &reminderService{
		responses:   responses,
		slack:       slackAPI,
		markerEmoji: markerEmoji,
	}
}

func (r *reminderService) Remind(ctx context.Context, mode ReminderMode, channel, ts, invoker string) ([]slack.User, error) {
	switch mode {
	case ReminderBroadcast, ReminderDirect, ReminderList:
	default:
		return nil, fmt.Errorf("%w: reminder mode %q", dto.ErrInvalidArgument, mode)
	}

	users, err := r.responses.NonResponders(ctx, channel, ts, r.markerEmoji)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return users, r.ephemeral(ctx, channel, invoker, everyoneRespondedText)
	}

	switch mode {
	case ReminderBroadcast:
		err = r.broadcast(ctx, channel, ts, users)
	case ReminderDirect:
		err = r.direct(ctx, channel, ts, invoker, users)
	case ReminderList:
		err = r.ephemeral(ctx, channel, invoker,
			"Looks like the following users have not responded:\n"+strings.Join(displayNames(users), ", "))
	}
	if err != nil {
		return nil, err
	}

	appctx.Logger(ctx).Infof("User %s sent %s reminder for %s/%s to %d users", invoker, mode, channel, ts, len(users))
	return users, nil
}

func (r *reminderService) broadcast(ctx context.Context, channel, ts string, users []slack.User) error {
	text := "Dont forget :point_up:\n" + strings.Join(mentions(users), " ")
	_, _, err := r.slack.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(ts),
	)
	if err != nil {
		return fmt.Errorf("%w: post reminder: %v", dto.ErrExternalFailure, err)
	}
	return nil
}

// direct messages every user on its own. A user that can not be reached is
// reported to the invoker instead of aborting the rest.
func (r *reminderService) direct(ctx context.Context, channel, ts, invoker string, users []slack.User) error {
	permalink, err := r.slack.GetPermalinkContext(ctx, &slack.PermalinkParameters{Channel: channel, Ts: ts})
	if err != nil {
		return fmt.Errorf("%w: permalink: %v", dto.ErrExternalFailure, err)
	}

	text := fmt.Sprintf("Hey! <@%s> is waiting for your answer on this poll: %s", invoker, permalink)

	var reached, failed []slack.User
	for _, user := range users {
		if err := r.message(ctx, user.ID, text); err != nil {
			appctx.Logger(ctx).Errorf("Error reminding user %s: %v", user.ID, err)
			failed = append(failed, user)
			continue
		}
		reached = append(reached, user)
	}

	summary := "Sent a reminder to: " + strings.Join(displayNames(reached), ", ")
	if len(reached) == 0 {
		summary = "Could not send any reminders."
	}
	if len(failed) > 0 {
		summary += "\nCould not reach: " + strings.Join(displayNames(failed), ", ")
	}
	return r.ephemeral(ctx, channel, invoker, summary)
}

func (r *reminderService) message(ctx context.Context, user, text string) error {
	im, _, _, err := r.slack.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users:    []string{user},
		ReturnIM: true,
	})
	if err != nil {
		return err
	}
	_, _, err = r.slack.PostMessageContext(ctx, im.ID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	return err
}

func (r *reminderService) ephemeral(ctx context.Context, channel, user, text string) error {
	if _, err := r.slack.PostEphemeralContext(ctx, channel, user, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("%w: post ephemeral: %v", dto.ErrExternalFailure, err)
	}
	return nil
}

func mentions(users []slack.User) []string {
	out := make([]string, 0, len(users))
	for _, user := range users {
		out = append(out, fmt.Sprintf("<@%s>", user.ID))
	}
	return out
}

func displayNames(users []slack.User) []string {
	out := make([]string, 0, len(users))
	for _, user := range users {
		switch {
		case user.Profile.DisplayName != "":
			out = append(out, user.Profile.DisplayName)
		case user.RealName != "":
			out = append(out, user.RealName)
		default:
			out = append(out, user.Name)
		}
	}
	return out
}
