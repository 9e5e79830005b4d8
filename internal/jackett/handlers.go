package jackett

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Routes implements plugin.APIProvider.
func (p *Plugin) Routes(g *echo.Group) {
	g.GET("/indexers", p.handleIndexers)
	g.GET("/indexers/:id/caps", p.handleCaps)
	g.GET("/sites", p.handleSites)
	g.GET("/search", p.handleSearch)
	g.POST("/sync", p.handleSync)
	g.POST("/test", p.handleTest)
}

func (p *Plugin) handleIndexers(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "jackett is not configured")
	}

	indexers, err := client.FetchIndexers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, indexers)
}

func (p *Plugin) handleCaps(c echo.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "jackett is not configured")
	}

	caps, err := client.Caps(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, caps)
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
		return echo.NewHTTPError(http.StatusServiceUnavailable, "jackett is not configured")
	}
	if err := client.Test(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
