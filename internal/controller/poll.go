package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/krakosik/pollbot/internal/client"
	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/model"
	"github.com/krakosik/pollbot/internal/render"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type PollController interface {
	Get(c echo.Context) error
	List(c echo.Context) error
	// Events streams poll changes as server-sent events until the client disconnects.
	Events(c echo.Context) error
}

type pollController struct {
	pollService service.PollService
	broker      client.Broker
}

func newPollController(pollService service.PollService, broker client.Broker) PollController {
	return &pollController{
		pollService: pollService,
		broker:      broker,
	}
}

func (p *pollController) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return errorResponse(c, fmt.Errorf("%w: poll id %q", dto.ErrInvalidArgument, c.Param("id")))
	}

	poll, err := p.pollService.Get(c.Request().Context(), uint(id))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, pollResult(poll))
}

func (p *pollController) List(c echo.Context) error {
	polls, err := p.pollService.List(c.Request().Context(), c.QueryParam("author"))
	if err != nil {
		return errorResponse(c, err)
	}

	summaries := make([]dto.PollSummary, 0, len(polls))
	for _, poll := range polls {
		summaries = append(summaries, dto.PollSummary{
			ID:        poll.ID,
			Type:      poll.Type.String(),
			Title:     poll.Title,
			Author:    poll.Author,
			Channel:   poll.Channel,
			TS:        poll.TS,
			Published: poll.Published(),
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

func (p *pollController) Events(c echo.Context) error {
	connectionID := uuid.NewString()
	events, err := p.broker.Subscribe(connectionID)
	if err != nil {
		return errorResponse(c, err)
	}
	defer func() {
		if err := p.broker.Unsubscribe(connectionID); err != nil {
			logrus.Errorf("Error unsubscribing %s: %v", connectionID, err)
		}
	}()

	if user, ok := appctx.GetUserFromContext(c.Request().Context()); ok {
		logrus.Infof("User %s subscribed to poll events as %s", user.UID, connectionID)
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				logrus.Errorf("Error encoding poll event: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(response, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

func pollResult(poll model.Poll) dto.PollResult {
	result := dto.PollResult{
		ID:          poll.ID,
		Type:        poll.Type.String(),
		Title:       poll.Title,
		Description: poll.Description,
		Author:      poll.Author,
		Channel:     poll.Channel,
		TS:          poll.TS,
		Published:   poll.Published(),
		Options:     make([]dto.OptionResult, 0, len(poll.Options)),
	}

	for _, option := range render.SortedOptions(poll) {
		voters := make([]string, 0, len(option.Votes))
		for _, vote := range option.Votes {
			voters = append(voters, vote.UserID)
		}
		result.Options = append(result.Options, dto.OptionResult{
			ID:          option.ID,
			Label:       option.Label(),
			URL:         option.URL,
			Description: option.Description,
			Creator:     option.Creator,
			Votes:       len(option.Votes),
			Voters:      voters,
		})
	}

	return result
}
