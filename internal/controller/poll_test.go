package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/client/clienttest"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/krakosik/pollbot/internal/repository"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack/socketmode"
	"github.com/steinfletcher/apitest"
)

const validToken = "valid-token"

type fakeAuthClient struct{}

func (fakeAuthClient) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != validToken {
		return nil, errors.New("unknown token")
	}
	return &auth.Token{UID: "admin", Claims: map[string]interface{}{"email": "admin@example.com"}}, nil
}

type testClients struct {
	slack      *clienttest.Slack
	broker     client.Broker
	authClient client.AuthClient
}

func (c testClients) Slack() client.SlackAPI { return c.slack }
func (c testClients) SocketMode() *socketmode.Client { return nil }
func (c testClients) AuthClient() client.AuthClient { return c.authClient }
func (c testClients) Broker() client.Broker { return c.broker }
func (c testClients) Close() error { return c.broker.Close() }

func newTestServer(t *testing.T, withAuth bool) (*echo.Echo, service.Services) {
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

	clients := testClients{slack: clienttest.NewSlack(), broker: client.NewBroker(dto.Config{})}
	if withAuth {
		clients.authClient = fakeAuthClient{}
	}
	t.Cleanup(func() { clients.Close() })

	services := service.NewServices(repository.NewRepositories(db), dto.Config{}, clients)
	e := echo.New()
	NewControllers(services, clients.Broker()).Route(e)
	return e, services
}

func createPoll(t *testing.T, services service.Services, author string, names ...string) model.Poll {
	t.Helper()

	input := dto.CreatePollInput{Type: model.PollTypeVote, Title: "Lunch", Author: author, Channel: "C1"}
	for _, name := range names {
		name := name
		input.Options = append(input.Options, dto.OptionInput{Name: &name})
	}
	poll, err := services.Poll().Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return poll
}

func vote(t *testing.T, services service.Services, poll model.Poll, option int, user string) {
	t.Helper()

	if _, err := services.Poll().ToggleVote(context.Background(), poll.Channel, poll.TS, poll.Options[option].ID, user, user); err != nil {
		t.Fatalf("vote: %v", err)
	}
}

func decodeBody(res *http.Response, v interface{}) error {
	return json.NewDecoder(res.Body).Decode(v)
}

func TestInfoAndHealth(t *testing.T) {
	e, _ := newTestServer(t, false)

	apitest.New().
		Handler(e).
		Get("/healthz").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"status":"ok"}`).
		End()

	apitest.New().
		Handler(e).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, _ *http.Request) error {
			var info map[string]string
			if err := decodeBody(res, &info); err != nil {
				return err
			}
			if info["name"] != "pollbot" {
				return fmt.Errorf("unexpected info %v", info)
			}
			return nil
		}).
		End()
}

func TestAPIDisabledWithoutAuth(t *testing.T) {
	e, _ := newTestServer(t, false)

	apitest.New().
		Handler(e).
		Get("/api/polls").
		Header("Authorization", "Bearer "+validToken).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestAPIRequiresBearerToken(t *testing.T) {
	e, _ := newTestServer(t, true)

	apitest.New().
		Handler(e).
		Get("/api/polls").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(e).
		Get("/api/polls").
		Header("Authorization", "Basic abc").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestGetPollResults(t *testing.T) {
	e, services := newTestServer(t, true)
	poll := createPoll(t, services, "U1", "Pizza", "Sushi", "Tacos")
	vote(t, services, poll, 0, "U1")
	vote(t, services, poll, 2, "U1")
	vote(t, services, poll, 2, "U2")

	apitest.New().
		Handler(e).
		Get(fmt.Sprintf("/api/polls/%d", poll.ID)).
		Header("Authorization", "Bearer "+validToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, _ *http.Request) error {
			var result dto.PollResult
			if err := decodeBody(res, &result); err != nil {
				return err
			}
			if result.ID != poll.ID || result.Type != "vote" || !result.Published {
				return fmt.Errorf("unexpected poll %+v", result)
			}
			var labels []string
			for _, option := range result.Options {
				labels = append(labels, option.Label)
			}
			if fmt.Sprint(labels) != "[Tacos Pizza Sushi]" {
				return fmt.Errorf("unexpected order %v", labels)
			}
			if result.Options[0].Votes != 2 || fmt.Sprint(result.Options[0].Voters) != "[U1 U2]" {
				return fmt.Errorf("unexpected votes %+v", result.Options[0])
			}
			return nil
		}).
		End()
}

func TestGetPollErrors(t *testing.T) {
	e, _ := newTestServer(t, true)

	apitest.New().
		Handler(e).
		Get("/api/polls/42").
		Header("Authorization", "Bearer "+validToken).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().
		Handler(e).
		Get("/api/polls/abc").
		Header("Authorization", "Bearer "+validToken).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestListPollsByAuthor(t *testing.T) {
	e, services := newTestServer(t, true)
	first := createPoll(t, services, "U1", "Pizza")
	createPoll(t, services, "U2", "Sushi")
	second := createPoll(t, services, "U1", "Tacos")

	apitest.New().
		Handler(e).
		Get("/api/polls").
		Query("author", "U1").
		Header("Authorization", "Bearer "+validToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, _ *http.Request) error {
			var summaries []dto.PollSummary
			if err := decodeBody(res, &summaries); err != nil {
				return err
			}
			if len(summaries) != 2 || summaries[0].ID != second.ID || summaries[1].ID != first.ID {
				return fmt.Errorf("unexpected summaries %+v", summaries)
			}
			return nil
		}).
		End()
}
