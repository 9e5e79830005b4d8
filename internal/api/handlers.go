package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

func (s *Server) registerRoutes() {
	v1 := s.echo.Group("/api/v1")

	v1.GET("/health", s.handleHealth)
	v1.GET("/search", s.handleSearch)

	v1.GET("/plugins", s.handleListPlugins)
	v1.GET("/plugins/:id/config", s.handleGetConfig)
	v1.PUT("/plugins/:id/config", s.handlePutConfig)
	v1.GET("/plugins/:id/form", s.handleForm)
	v1.GET("/plugins/:id/page", s.handlePage)
	v1.POST("/plugins/:id/command/:action", s.handleCommand)

	v1.GET("/scheduler/tasks", s.handleListTasks)
	v1.POST("/scheduler/tasks/:id/run", s.handleRunTask)

	// Each plugin that exposes routes gets its own group.
	for _, status := range s.manager.Plugins() {
		p, ok := s.manager.Get(status.ID)
		if !ok {
			continue
		}
		if ap, ok := p.(plugin.APIProvider); ok {
			ap.Routes(v1.Group("/plugins/" + status.ID))
		}
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch dispatches a search to the provider owning the requested
// site. Unknown sites return an empty result set, not an error.
func (s *Server) handleSearch(c echo.Context) error {
	site := c.QueryParam("site")
	if site == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "site is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))

	records := s.manager.Search(c.Request().Context(), site, plugin.SearchRequest{
		Keyword: c.QueryParam("q"),
		Kind:    plugin.MediaKind(c.QueryParam("type")),
		Page:    page,
	})
	if records == nil {
		records = []plugin.TorrentRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleListPlugins(c echo.Context) error {
	return c.JSON(http.StatusOK, s.manager.Plugins())
}

func (s *Server) handleGetConfig(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.manager.Get(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown plugin")
	}

	raw, err := s.manager.Config(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if raw == nil {
		raw = json.RawMessage("{}")
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func (s *Server) handlePutConfig(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.manager.Get(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown plugin")
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	if !json.Valid(raw) {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be valid JSON")
	}

	if err := s.manager.UpdateConfig(c.Request().Context(), id, raw); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleForm(c echo.Context) error {
	p, ok := s.manager.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown plugin")
	}

	form, defaults := p.Form()
	return c.JSON(http.StatusOK, map[string]any{
		"form":     form,
		"defaults": defaults,
	})
}

func (s *Server) handlePage(c echo.Context) error {
	p, ok := s.manager.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown plugin")
	}
	return c.JSON(http.StatusOK, p.Page())
}

func (s *Server) handleCommand(c echo.Context) error {
	action := "/" + c.Param("action")
	if err := s.manager.HandleCommand(c.Request().Context(), action); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.ListTasks())
}

func (s *Server) handleRunTask(c echo.Context) error {
	taskID := c.Param("id")
	if err := s.sched.RunNow(taskID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Task started",
		"taskId":  taskID,
	})
}
