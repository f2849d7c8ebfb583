package client

import (
	"context"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

type Clients interface {
	Slack() SlackAPI
	SocketMode() *socketmode.Client
	// AuthClient is nil when no Firebase key is configured.
	AuthClient() AuthClient
	Broker() Broker
	Close() error
}

type clients struct {
	slackClient  *slack.Client
	socketClient *socketmode.Client
	authClient   AuthClient
	broker       Broker
}

func (c clients) Slack() SlackAPI {
	return c.slackClient
}

func (c clients) SocketMode() *socketmode.Client {
	return c.socketClient
}

func (c clients) AuthClient() AuthClient {
	return c.authClient
}

func (c clients) Broker() Broker {
	return c.broker
}

func (c clients) Close() error {
	return c.broker.Close()
}

func NewClients(cfg dto.Config) Clients {
	slackClient := slack.New(
		cfg.SlackBotToken,
		slack.OptionDebug(cfg.SlackDebug),
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)
	socketClient := socketmode.New(
		slackClient,
		socketmode.OptionDebug(cfg.SlackDebug),
	)

	var authClient AuthClient
	decodedFirebaseKey, err := cfg.DecodeFirebaseKey()
	if err != nil {
		logrus.Panic(err)
	}
	if decodedFirebaseKey != nil {
		authClient, err = newFirebaseAuthClient(context.Background(), decodedFirebaseKey)
		if err != nil {
			logrus.Panic(err)
		}
	} else {
		logrus.Warn("FIREBASE_KEY not set, admin API is disabled")
	}

	return &clients{
		slackClient:  slackClient,
		socketClient: socketClient,
		authClient:   authClient,
		broker:       NewBroker(cfg),
	}
}
