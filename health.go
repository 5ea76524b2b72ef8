package blogfront

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "available",
		"system_info": map[string]string{
			"version": a.version,
			"api":     a.Config.API.BaseURL,
		},
	})
}
