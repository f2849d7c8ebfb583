package service

import (
	"context"
	"fmt"

	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/repository"
	"github.com/slack-go/slack"
)

const slackbotID = "USLACKBOT"

type ResponseService interface {
	// NonResponders returns the channel members who neither reacted with the
	// marker emoji nor voted on the poll posted at ts, in roster order.
	NonResponders(ctx context.Context, channel, ts, marker string) ([]slack.User, error)
}

type responseService struct {
	voteRepository repository.VoteRepository
	roster         RosterService
	slack          client.SlackAPI
}

func newResponseService(voteRepository repository.VoteRepository, roster RosterService, slackAPI client.SlackAPI) ResponseService {
	return &responseService{
		voteRepository: voteRepository,
		roster:         roster,
		slack:          slackAPI,
	}
}

func (r *responseService) NonResponders(ctx context.Context, channel, ts, marker string) ([]slack.User, error) {
	responded := make(map[string]struct{})

	reactions, err := r.slack.GetReactionsContext(ctx, slack.NewRefToMessage(channel, ts), slack.GetReactionsParameters{Full: true})
	if err != nil {
		return nil, fmt.Errorf("%w: get reactions: %v", dto.ErrExternalFailure, err)
	}
	for _, reaction := range reactions {
		if reaction.Name != marker {
			continue
		}
		for _, user := range reaction.Users {
			responded[user] = struct{}{}
		}
	}

	voters, err := r.voteRepository.ListVoters(ctx, channel, ts)
	if err != nil {
		return nil, err
	}
	for _, user := range voters {
		responded[user] = struct{}{}
	}

	members := r.roster.ChannelMembers(ctx, channel)

	directory, err := r.roster.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make(map[string]slack.User, len(directory))
	for _, user := range directory {
		users[user.ID] = user
	}

	seen := make(map[string]struct{}, len(members))
	nonResponders := make([]slack.User, 0)
	for _, id := range members {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, ok := responded[id]; ok {
			continue
		}
		user, ok := users[id]
		if !ok || user.IsBot || user.Deleted || user.ID == slackbotID {
			continue
		}
		nonResponders = append(nonResponders, user)
	}

	return nonResponders, nil
}
