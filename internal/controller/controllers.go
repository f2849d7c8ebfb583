package controller

import (
	"github.com/krakosik/pollbot/internal/client"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type Controllers interface {
	Poll() PollController
	Info() InfoController

	Route(e *echo.Echo)
}

type controllers struct {
	pollController PollController
	infoController InfoController
	authService    service.AuthService
}

func NewControllers(services service.Services, broker client.Broker) Controllers {
	pollController := newPollController(services.Poll(), broker)
	infoController := newInfoController()
	return &controllers{
		pollController: pollController,
		infoController: infoController,
		authService:    services.Auth(),
	}
}

func (c controllers) Poll() PollController {
	return c.pollController
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)
	e.GET("/healthz", c.infoController.Health)

	if !c.authService.Enabled() {
		logrus.Warn("Authentication is not configured, /api routes are disabled")
		return
	}

	api := e.Group("/api", AuthMiddleware(c.authService))
	api.GET("/polls", c.pollController.List)
	api.GET("/polls/events", c.pollController.Events)
	api.GET("/polls/:id", c.pollController.Get)
}
