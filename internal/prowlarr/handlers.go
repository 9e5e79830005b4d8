package prowlarr

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Routes implements plugin.APIProvider.
func (p *Plugin) Routes(g *echo.Group) {
	g.GET("/indexers", p.handleIndexers)
	g.GET("/sites", p.handleSites)
	g.GET("/search", p.handleSearch)
	g.GET("/status", p.handleStatus)
	g.POST("/sync", p.handleSync)
	g.POST("/test", p.handleTest)
}

func (p *Plugin) handleIndexers(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prowlarr is not configured")
	}

	indexers, err := client.GetIndexers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, indexers)
}

func (p *Plugin) handleSites(c echo.Context) error {
	registered, err := p.registry.ListByPlugin(c.Request().Context(), PluginID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, registered)
}

func (p *Plugin) handleSearch(c echo.Context) error {
	site := c.QueryParam("site")
	if site == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "site is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))

	records, err := p.Search(c.Request().Context(), site, plugin.SearchRequest{
		Keyword: c.QueryParam("q"),
		Kind:    plugin.MediaKind(c.QueryParam("type")),
		Page:    page,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"results":   records,
		"formatted": plugin.FormatRecords(records, 20),
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
		status["rateLimitDelay"] = client.limiter.GetCurrentDelay().String()
	}
	return c.JSON(http.StatusOK, status)
}

func (p *Plugin) handleSync(c echo.Context) error {
	if err := p.Sync(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (p *Plugin) handleTest(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "prowlarr is not configured")
	}
	if err := client.TestConnection(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
