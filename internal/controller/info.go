package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Version is set at build time.
var Version = "dev"

type InfoController interface {
	Info(c echo.Context) error
	Health(c echo.Context) error
}

type infoController struct{}

func newInfoController() InfoController {
	return &infoController{}
}

func (i *infoController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    "pollbot",
		"version": Version,
	})
}

func (i *infoController) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
