package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/krakosik/pollbot/internal/client"
	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/krakosik/pollbot/internal/render"
	"github.com/krakosik/pollbot/internal/repository"
	"github.com/slack-go/slack"
)

type PollService interface {
	Create(ctx context.Context, input dto.CreatePollInput) (model.Poll, error)
	ToggleVote(ctx context.Context, channel, ts string, optionID uint, user, userName string) (bool, error)
	Delete(ctx context.Context, pollID uint, requester string) error
	CheckCanAddOption(ctx context.Context, poll model.Poll, requester string) error
	AddOption(ctx context.Context, pollID uint, requester string, input dto.OptionInput) (model.Option, error)
	RemoveOptions(ctx context.Context, pollID uint, requester string, ids []uint) error
	Refresh(ctx context.Context, pollID uint) error
	Get(ctx context.Context, pollID uint) (model.Poll, error)
	GetByMessage(ctx context.Context, channel, ts string) (model.Poll, error)
	List(ctx context.Context, author string) ([]model.Poll, error)
}

type pollService struct {
	pollRepository   repository.PollRepository
	optionRepository repository.OptionRepository
	voteRepository   repository.VoteRepository
	slack            client.SlackAPI
	broker           client.Broker
	renderer         render.Renderer
	markerEmoji      string
	now              func() time.Time
}

func newPollService(repositories repository.Repositories, slackAPI client.SlackAPI, broker client.Broker, markerEmoji string) PollService {
	return &pollService{
		pollRepository:   repositories.Poll(),
		optionRepository: repositories.Option(),
		voteRepository:   repositories.Vote(),
		slack:            slackAPI,
		broker:           broker,
		renderer:         render.New(markerEmoji),
		markerEmoji:      markerEmoji,
		now:              time.Now,
	}
}

// Create stores the poll as pending, posts it and records the message coordinates.
// If the message can not be posted or its coordinates can not be stored, the poll
// and any posted message are removed again.
func (p *pollService) Create(ctx context.Context, input dto.CreatePollInput) (model.Poll, error) {
	logger := appctx.Logger(ctx)

	poll, err := newPoll(input)
	if err != nil {
		return model.Poll{}, err
	}

	created, err := p.pollRepository.Create(ctx, poll)
	if err != nil {
		return model.Poll{}, err
	}

	snapshot, err := p.pollRepository.GetByID(ctx, created.ID, true)
	if err != nil {
		p.rollback(ctx, created.ID)
		return model.Poll{}, err
	}

	channel, ts, err := p.slack.PostMessageContext(ctx, input.Channel, p.messageOptions(snapshot)...)
	if err != nil {
		p.rollback(ctx, created.ID)
		return model.Poll{}, fmt.Errorf("%w: post poll: %v", dto.ErrExternalFailure, err)
	}

	if err := p.pollRepository.UpdateCoordinates(ctx, created.ID, channel, ts); err != nil {
		if _, _, delErr := p.slack.DeleteMessageContext(ctx, channel, ts); delErr != nil {
			logger.Errorf("Error removing message of unpublished poll %d: %v", created.ID, delErr)
		}
		p.rollback(ctx, created.ID)
		return model.Poll{}, err
	}
	snapshot.Channel = channel
	snapshot.TS = ts

	if err := p.slack.AddReactionContext(ctx, p.markerEmoji, slack.NewRefToMessage(channel, ts)); err != nil {
		logger.Warnf("Error adding marker reaction to poll %d: %v", created.ID, err)
	}

	logger.Infof("User %s created %s poll %d with %d options", input.Author, snapshot.Type, snapshot.ID, len(snapshot.Options))
	p.publish(ctx, dto.PollEventCreated, snapshot, input.Author)

	return snapshot, nil
}

func newPoll(input dto.CreatePollInput) (model.Poll, error) {
	if !input.Type.Valid() {
		return model.Poll{}, fmt.Errorf("%w: unknown poll type %d", dto.ErrInvalidArgument, input.Type)
	}
	if input.Channel == "" || input.Author == "" {
		return model.Poll{}, fmt.Errorf("%w: poll needs a channel and an author", dto.ErrInvalidArgument)
	}
	if len(input.Options) == 0 {
		return model.Poll{}, fmt.Errorf("%w: poll needs at least one option", dto.ErrInvalidArgument)
	}
	if len(input.Options) > dto.MaxOptions+1 {
		return model.Poll{}, fmt.Errorf("%w: %d options", dto.ErrCapacityExceeded, len(input.Options))
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.Type.DefaultTitle()
	}

	options := make([]model.Option, 0, len(input.Options))
	for _, in := range input.Options {
		option := in.Option()
		if !option.Matches(input.Type) {
			return model.Poll{}, fmt.Errorf("%w: option does not fit a %s poll", dto.ErrInvalidArgument, input.Type)
		}
		options = append(options, option)
	}

	return model.Poll{
		Type:                 input.Type,
		Title:                title,
		Description:          input.Description,
		Author:               input.Author,
		UsersCanAddOption:    input.UsersCanAddOption,
		DisplayUsersVotes:    input.DisplayUsersVotes,
		AddOptionDescription: input.AddOptionDescription,
		Options:              options,
	}, nil
}

func (p *pollService) rollback(ctx context.Context, pollID uint) {
	if err := p.pollRepository.Delete(ctx, pollID); err != nil {
		appctx.Logger(ctx).Errorf("Error rolling back poll %d: %v", pollID, err)
	}
}

// ToggleVote casts the user's vote for the option, or retracts it if it was already cast.
func (p *pollService) ToggleVote(ctx context.Context, channel, ts string, optionID uint, user, userName string) (bool, error) {
	poll, err := p.pollRepository.GetByMessage(ctx, channel, ts)
	if err != nil {
		return false, err
	}

	option, err := p.optionRepository.GetByID(ctx, optionID)
	if err != nil {
		return false, err
	}
	if option.PollID != poll.ID {
		return false, fmt.Errorf("%w: option %d is not part of poll %d", dto.ErrNotFound, optionID, poll.ID)
	}

	if userName == "" {
		userName = model.UnknownUserName
	}
	cast, err := p.voteRepository.Toggle(ctx, model.Vote{
		UserID:   user,
		UserName: userName,
		OptionID: option.ID,
		PollID:   poll.ID,
	})
	if err != nil {
		return false, err
	}

	if cast {
		appctx.Logger(ctx).Infof("User %s voted for option %d of poll %d", user, option.ID, poll.ID)
	} else {
		appctx.Logger(ctx).Infof("User %s retracted vote for option %d of poll %d", user, option.ID, poll.ID)
	}

	if err := p.Refresh(ctx, poll.ID); err != nil {
		return cast, err
	}
	p.publish(ctx, dto.PollEventVoted, poll, user)

	return cast, nil
}

// Delete removes the poll and its message. Only the author may delete a poll.
func (p *pollService) Delete(ctx context.Context, pollID uint, requester string) error {
	poll, err := p.pollRepository.GetByID(ctx, pollID, false)
	if err != nil {
		return err
	}
	if !poll.IsAuthor(requester) {
		return fmt.Errorf("%w: only the author can delete poll %d", dto.ErrNotAuthorized, pollID)
	}

	if err := p.pollRepository.Delete(ctx, poll.ID); err != nil {
		return err
	}
	if poll.Published() {
		if _, _, err := p.slack.DeleteMessageContext(ctx, poll.Channel, poll.TS); err != nil {
			return fmt.Errorf("%w: delete poll message: %v", dto.ErrExternalFailure, err)
		}
	}

	appctx.Logger(ctx).Infof("User %s deleted poll %d", requester, poll.ID)
	p.publish(ctx, dto.PollEventDeleted, poll, requester)

	return nil
}

// CheckCanAddOption reports whether requester may add an option to the poll right now.
func (p *pollService) CheckCanAddOption(ctx context.Context, poll model.Poll, requester string) error {
	if !poll.UsersCanAddOption && !poll.IsAuthor(requester) {
		return fmt.Errorf("%w: poll %d is closed for new options", dto.ErrNotAuthorized, poll.ID)
	}

	count, err := p.optionRepository.Count(ctx, poll.ID)
	if err != nil {
		return err
	}
	if count > dto.MaxOptions {
		return fmt.Errorf("%w: poll %d already has %d options", dto.ErrCapacityExceeded, poll.ID, count)
	}

	return nil
}

func (p *pollService) AddOption(ctx context.Context, pollID uint, requester string, input dto.OptionInput) (model.Option, error) {
	poll, err := p.pollRepository.GetByID(ctx, pollID, false)
	if err != nil {
		return model.Option{}, err
	}
	if err := p.CheckCanAddOption(ctx, poll, requester); err != nil {
		return model.Option{}, err
	}

	option := input.Option()
	if !option.Matches(poll.Type) {
		return model.Option{}, fmt.Errorf("%w: option does not fit a %s poll", dto.ErrInvalidArgument, poll.Type)
	}
	option.PollID = poll.ID
	if !poll.IsAuthor(requester) {
		option.Creator = &requester
	}

	created, err := p.optionRepository.Create(ctx, option)
	if err != nil {
		return model.Option{}, err
	}

	appctx.Logger(ctx).Infof("User %s added option %d to poll %d", requester, created.ID, poll.ID)

	if err := p.Refresh(ctx, poll.ID); err != nil {
		return created, err
	}
	p.publish(ctx, dto.PollEventOptionAdded, poll, requester)

	return created, nil
}

// RemoveOptions deletes the given options of the poll with their votes. Only the author may remove options.
func (p *pollService) RemoveOptions(ctx context.Context, pollID uint, requester string, ids []uint) error {
	poll, err := p.pollRepository.GetByID(ctx, pollID, false)
	if err != nil {
		return err
	}
	if !poll.IsAuthor(requester) {
		return fmt.Errorf("%w: only the author can remove options of poll %d", dto.ErrNotAuthorized, pollID)
	}

	removed, err := p.optionRepository.Delete(ctx, poll.ID, ids)
	if err != nil {
		return err
	}

	appctx.Logger(ctx).Infof("User %s removed %d options from poll %d", requester, removed, poll.ID)

	if err := p.Refresh(ctx, poll.ID); err != nil {
		return err
	}
	p.publish(ctx, dto.PollEventOptionsRemoved, poll, requester)

	return nil
}

// Refresh re-reads the poll and rewrites its message. Pending polls have no message yet.
func (p *pollService) Refresh(ctx context.Context, pollID uint) error {
	poll, err := p.pollRepository.GetByID(ctx, pollID, true)
	if err != nil {
		return err
	}
	if !poll.Published() {
		return nil
	}

	if _, _, _, err := p.slack.UpdateMessageContext(ctx, poll.Channel, poll.TS, p.messageOptions(poll)...); err != nil {
		return fmt.Errorf("%w: update poll message: %v", dto.ErrExternalFailure, err)
	}

	return nil
}

func (p *pollService) Get(ctx context.Context, pollID uint) (model.Poll, error) {
	return p.pollRepository.GetByID(ctx, pollID, true)
}

func (p *pollService) GetByMessage(ctx context.Context, channel, ts string) (model.Poll, error) {
	return p.pollRepository.GetByMessage(ctx, channel, ts)
}

func (p *pollService) List(ctx context.Context, author string) ([]model.Poll, error) {
	return p.pollRepository.List(ctx, author)
}

func (p *pollService) messageOptions(poll model.Poll) []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionText(p.renderer.Text(poll), false),
		slack.MsgOptionBlocks(p.renderer.Render(poll)...),
	}
}

func (p *pollService) publish(ctx context.Context, eventType dto.PollEventType, poll model.Poll, user string) {
	event := dto.PollEvent{
		Type:    eventType,
		PollID:  poll.ID,
		Channel: poll.Channel,
		TS:      poll.TS,
		User:    user,
		At:      p.now().UTC(),
	}
	if err := p.broker.Publish(ctx, event); err != nil {
		appctx.Logger(ctx).Errorf("Error publishing %s event for poll %d: %v", eventType, poll.ID, err)
	}
}
