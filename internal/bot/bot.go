// Package bot connects the poll services to Slack over Socket Mode.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/pollbot/internal/client"
	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

type Bot struct {
	socket   *socketmode.Client
	slack    client.SlackAPI
	services service.Services
	now      func() time.Time

	wg sync.WaitGroup
}

func New(clients client.Clients, services service.Services) *Bot {
	return newBot(clients.SocketMode(), clients.Slack(), services)
}

func newBot(socket *socketmode.Client, slackAPI client.SlackAPI, services service.Services) *Bot {
	return &Bot{
		socket:   socket,
		slack:    slackAPI,
		services: services,
		now:      time.Now,
	}
}

// Run processes Socket Mode events until ctx is cancelled and waits for
// in-flight handlers before returning.
func (b *Bot) Run(ctx context.Context) error {
	identity, err := b.slack.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: slack auth test: %v", dto.ErrExternalFailure, err)
	}
	logrus.Infof("Authenticated as %s in team %s", identity.User, identity.Team)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		b.consume(ctx, b.socket.Events)
	}()

	err = b.socket.RunContext(ctx)
	cancel()
	// No dispatch can start once the consumer is gone.
	<-consumed
	b.wg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// consume hands events to handleEvent until ctx is done or events is closed.
func (b *Bot) consume(ctx context.Context, events <-chan socketmode.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		logrus.Info("Connecting to Slack with Socket Mode")
	case socketmode.EventTypeConnected:
		logrus.Info("Connected to Slack with Socket Mode")
	case socketmode.EventTypeConnectionError:
		logrus.Warnf("Socket Mode connection failed: %v", evt.Data)

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		b.ack(evt)
		b.dispatch(ctx, cmd.UserID, cmd.ChannelID, func(ctx context.Context) {
			b.handleSlashCommand(ctx, cmd)
		})

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		b.ack(evt)
		b.dispatch(ctx, callback.User.ID, callback.Channel.ID, func(ctx context.Context) {
			b.handleInteraction(ctx, callback)
		})

	case socketmode.EventTypeEventsAPI:
		event, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.ack(evt)
		if event.Type != slackevents.CallbackEvent {
			return
		}
		if mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
			b.dispatch(ctx, mention.User, mention.Channel, func(ctx context.Context) {
				b.handleMention(ctx, mention)
			})
		}
	}
}

func (b *Bot) ack(evt socketmode.Event) {
	if evt.Request != nil {
		b.socket.Ack(*evt.Request)
	}
}

// dispatch runs handler on its own goroutine with a request-scoped logger.
func (b *Bot) dispatch(ctx context.Context, user, channel string, handler func(ctx context.Context)) {
	logger := logrus.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"user":       user,
		"channel":    channel,
	})
	ctx = appctx.WithLogger(ctx, logger)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("Handler panicked: %v", r)
			}
		}()
		handler(ctx)
	}()
}

func (b *Bot) postEphemeral(ctx context.Context, channel, user, text string) {
	if channel == "" || user == "" {
		appctx.Logger(ctx).Warnf("Dropped notice without a channel: %s", text)
		return
	}
	if _, err := b.slack.PostEphemeralContext(ctx, channel, user, slack.MsgOptionText(text, false)); err != nil {
		appctx.Logger(ctx).Errorf("Failed to post ephemeral message: %v", err)
	}
}

// notify tells the user why their request was rejected. Failures that are not
// the user's doing are only logged.
func (b *Bot) notify(ctx context.Context, channel, user string, err error) {
	logger := appctx.Logger(ctx)

	switch {
	case errors.Is(err, dto.ErrNotAuthorized):
		logger.Infof("Rejected request: %v", err)
		b.postEphemeral(ctx, channel, user, notAuthorizedText)
	case errors.Is(err, dto.ErrCapacityExceeded):
		logger.Infof("Rejected request: %v", err)
		b.postEphemeral(ctx, channel, user, capacityText)
	case errors.Is(err, dto.ErrNotFound):
		logger.Warnf("Poll lookup failed: %v", err)
		b.postEphemeral(ctx, channel, user, notFoundText)
	case errors.Is(err, dto.ErrInvalidArgument):
		logger.Infof("Rejected input: %v", err)
		b.postEphemeral(ctx, channel, user, invalidInputText)
	default:
		logger.Errorf("Request failed: %v", err)
	}
}

var (
	notAuthorizedText = "Only the author of this poll can do that."
	capacityText      = fmt.Sprintf("This poll already has the maximum of %d options.", dto.MaxOptions+1)
	notFoundText      = "This poll could not be found, it may have been deleted."
	invalidInputText  = "That input could not be used, please check it and try again."
	mentionHelpText   = "Mention me with `remind` in the thread of a poll to remind everyone who has not responded."
)
