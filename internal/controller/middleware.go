package controller

import (
	"net/http"
	"strings"

	appctx "github.com/krakosik/pollbot/internal/context"
	"github.com/krakosik/pollbot/internal/dto"
	"github.com/krakosik/pollbot/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware admits requests carrying a valid Firebase ID token as bearer token.
func AuthMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing authorization header"})
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid authorization format"})
			}

			user, err := authService.ValidateToken(c.Request().Context(), token)
			if err != nil {
				return errorResponse(c, err)
			}

			ctx := appctx.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
