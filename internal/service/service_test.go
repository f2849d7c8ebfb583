package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/client/clienttest"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/krakosik/pollbot/internal/repository"
)

const testMarker = "no_entry_sign"

type fixture struct {
	repos     repository.Repositories
	slack     *clienttest.Slack
	broker    client.Broker
	polls     PollService
	roster    RosterService
	responses ResponseService
	reminders ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.Open(dto.Config{
		DatabaseType: dto.DatabaseTypeSQLite,
		DatabaseURL:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	fake := clienttest.NewSlack()
	broker := client.NewBroker(dto.Config{})
	t.Cleanup(func() { broker.Close() })

	roster := newRosterService(fake)
	responses := newResponseService(repos.Vote(), roster, fake)
	return &fixture{
		repos:     repos,
		slack:     fake,
		broker:    broker,
		polls:     newPollService(repos, fake, broker, testMarker),
		roster:    roster,
		responses: responses,
		reminders: newReminderService(responses, fake, testMarker),
	}
}

func strPtr(s string) *string {
	return &s
}

func voteInput(author string, names ...string) dto.CreatePollInput {
	input := dto.CreatePollInput{
		Type:    model.PollTypeVote,
		Title:   "Lunch",
		Author:  author,
		Channel: "C1",
	}
	for _, name := range names {
		input.Options = append(input.Options, dto.OptionInput{Name: strPtr(name)})
	}
	return input
}

func meetingInput(author string, slots int) dto.CreatePollInput {
	input := dto.CreatePollInput{
		Type:    model.PollTypeMeeting,
		Author:  author,
		Channel: "C1",
	}
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	for i := 0; i < slots; i++ {
		slot := start.Add(time.Duration(i) * time.Hour)
		input.Options = append(input.Options, dto.OptionInput{Time: &slot})
	}
	return input
}

func (f *fixture) createPoll(t *testing.T, input dto.CreatePollInput) model.Poll {
	t.Helper()

	poll, err := f.polls.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return poll
}

func (f *fixture) optionCount(t *testing.T, pollID uint) int64 {
	t.Helper()

	count, err := f.repos.Option().Count(context.Background(), pollID)
	if err != nil {
		t.Fatalf("count options: %v", err)
	}
	return count
}
