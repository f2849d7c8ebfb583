package service

import (
	authV4 "firebase.google.com/go/v4/auth"
	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/repository"
)

type Services interface {
	Poll() PollService
	Roster() RosterService
	Response() ResponseService
	Reminder() ReminderService
	Auth() AuthService
}

type services struct {
	pollService     PollService
	rosterService   RosterService
	responseService ResponseService
	reminderService ReminderService
	authService     AuthService
}

func NewServices(repositories repository.Repositories, config dto.Config, clients client.Clients) Services {
	slackAPI := clients.Slack()
	marker := config.MarkerEmoji
	if marker == "" {
		marker = dto.DefaultMarkerEmoji
	}

	rosterService := newRosterService(slackAPI)
	responseService := newResponseService(repositories.Vote(), rosterService, slackAPI)
	return &services{
		pollService:     newPollService(repositories, slackAPI, clients.Broker(), marker),
		rosterService:   rosterService,
		responseService: responseService,
		reminderService: newReminderService(responseService, slackAPI, marker),
		authService:     newAuthService(clients.AuthClient(), authV4.IsIDTokenExpired),
	}
}

func (s services) Poll() PollService {
	return s.pollService
}

func (s services) Roster() RosterService {
	return s.rosterService
}

func (s services) Response() ResponseService {
	return s.responseService
}

func (s services) Reminder() ReminderService {
	return s.reminderService
}

func (s services) Auth() AuthService {
	return s.authService
}
