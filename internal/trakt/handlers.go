package trakt

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Routes implements plugin.APIProvider.
func (p *Plugin) Routes(g *echo.Group) {
	g.GET("/watchlist", p.handleWatchlist)
	g.GET("/status", p.handleStatus)
	g.POST("/sync", p.handleSync)
}

func (p *Plugin) handleWatchlist(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "trakt is not configured")
	}

	ctx := c.Request().Context()
	movies, err := client.WatchlistMovies(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	shows, err := client.WatchlistShows(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"movies": movies,
		"shows":  shows,
	})
}

func (p *Plugin) handleStatus(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	enabled := p.cfg.Enabled
	p.mu.RUnlock()

	status := map[string]any{
		"enabled":    enabled,
		"configured": client != nil,
	}
	if client != nil {
		token := client.Token()
		status["tokenExpiresAt"] = token.ExpiresAt.Format(time.RFC3339)
		status["tokenValid"] = token.Valid(time.Now())
	}
	if lastRun, stats := p.LastRun(); stats != nil {
		status["lastRun"] = lastRun.Format(time.RFC3339)
		status["lastStats"] = stats
	}
	return c.JSON(http.StatusOK, status)
}

func (p *Plugin) handleSync(c echo.Context) error {
	stats, err := p.Sync(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
