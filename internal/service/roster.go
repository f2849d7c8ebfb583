package service

import (
	"context"
	"fmt"

	"github.com/krakosik/pollbot/internal/client"
	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/slack-go/slack"
)

const rosterPageSize = 200

type RosterService interface {
	// ChannelMembers never fails; a roster that can not be fetched is empty.
	ChannelMembers(ctx context.Context, channel string) []string
	AllUsers(ctx context.Context) ([]slack.User, error)
}

type rosterService struct {
	slack client.SlackAPI
}

func newRosterService(slackAPI client.SlackAPI) RosterService {
	return &rosterService{slack: slackAPI}
}

func (r *rosterService) ChannelMembers(ctx context.Context, channel string) []string {
	params := &slack.GetUsersInConversationParameters{
		ChannelID: channel,
		Limit:     rosterPageSize,
	}

	var members []string
	for {
		page, cursor, err := r.slack.GetUsersInConversationContext(ctx, params)
		if err != nil {
			appctx.Logger(ctx).Warnf("Error listing members of channel %s, treating roster as empty: %v", channel, err)
			return []string{}
		}
		members = append(members, page...)
		if cursor == "" {
			return members
		}
		params.Cursor = cursor
	}
}

func (r *rosterService) AllUsers(ctx context.Context) ([]slack.User, error) {
	users, err := r.slack.GetUsersContext(ctx, slack.GetUsersOptionLimit(rosterPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", dto.ErrExternalFailure, err)
	}
	return users, nil
}
