package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type commandResponse struct {
	Accepted bool `json:"accepted"`
	Cleared  *int `json:"cleared,omitempty"`
}

type selectSiteBody struct {
	Site string `json:"site"`
}

type switchAllBody struct {
	Source string `json:"source"`
}

type adviceResponse struct {
	Site        domain.SiteId `json:"site"`
	Suggestions []string      `json:"suggestions"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	api := e.Group("/api")
	api.GET("/fleet", s.FleetHandler)
	api.GET("/sites/:site", s.SiteHandler)
	api.PUT("/active-site", s.SelectSiteHandler)
	api.POST("/machines/:id/toggle", s.ToggleMachineHandler)
	api.POST("/switch-all", s.SwitchAllHandler)
	api.GET("/alerts", s.AlertsHandler)
	api.DELETE("/alerts", s.ClearAlertsHandler)
	api.GET("/advice", s.AdviceHandler)
	api.GET("/ws", s.WebSocketHandler)

	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, REQUEST_TIMEOUT).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) FleetHandler(c echo.Context) error {
	state, err := s.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.NewFleetView(state))
}

func (s *Server) SiteHandler(c echo.Context) error {
	id, ok := domain.ParseSiteId(strings.ToUpper(c.Param("site")))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown site %q", c.Param("site")))
	}
	state, err := s.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.NewSiteView(id, state.Site(id)))
}

func (s *Server) SelectSiteHandler(c echo.Context) error {
	var body selectSiteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, ok := domain.ParseSiteId(strings.ToUpper(body.Site))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown site %q", body.Site))
	}
	res, err := request[domain.SelectSiteResponse](s, domain.SelectSiteRequest{Site: id})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commandResponse{Accepted: res.Accepted})
}

func (s *Server) ToggleMachineHandler(c echo.Context) error {
	machineId, err := strconv.Atoi(c.Param("id"))
	if err != nil || machineId < 1 || machineId > domain.MACHINES_PER_SITE {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown machine %q", c.Param("id")))
	}
	res, err := request[domain.ToggleMachineResponse](s, domain.ToggleMachineRequest{MachineId: machineId})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commandResponse{Accepted: res.Accepted})
}

func (s *Server) SwitchAllHandler(c echo.Context) error {
	var body switchAllBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	source, ok := domain.ParsePowerSource(strings.ToLower(body.Source))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid source %q", body.Source))
	}
	res, err := request[domain.SwitchAllResponse](s, domain.SwitchAllRequest{Source: source})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commandResponse{Accepted: res.Accepted})
}

func (s *Server) AlertsHandler(c echo.Context) error {
	filter := domain.AlertFilter{
		AllSites: c.QueryParam("all") == "true",
	}
	if raw := c.QueryParam("site"); raw != "" {
		id, ok := domain.ParseSiteId(strings.ToUpper(raw))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown site %q", raw))
		}
		filter.Site = id
	}
	if raw := c.QueryParam("type"); raw != "" {
		alertType, ok := domain.ParseAlertType(strings.ToUpper(raw))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown alert type %q", raw))
		}
		filter.Type = alertType
	}
	res, err := request[domain.GetAlertsResponse](s, domain.GetAlertsRequest{Filter: filter})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res.View)
}

func (s *Server) ClearAlertsHandler(c echo.Context) error {
	res, err := request[domain.ClearAlertsResponse](s, domain.ClearAlertsRequest{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commandResponse{Accepted: res.Accepted, Cleared: &res.Cleared})
}

func (s *Server) AdviceHandler(c echo.Context) error {
	res, err := request[domain.GetAdviceResponse](s, domain.GetAdviceRequest{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adviceResponse{Site: res.Site, Suggestions: res.Suggestions})
}

func (s *Server) WebSocketHandler(c echo.Context) error {
	state, err := s.snapshot()
	if err != nil {
		return err
	}
	initial, err := json.Marshal(domain.NewFleetView(state))
	if err != nil {
		return err
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", zap.Error(err))
		return nil
	}
	s.hub.serve(conn, initial)
	return nil
}

func (s *Server) snapshot() (domain.FleetState, error) {
	res, err := request[domain.GetFleetSnapshotResponse](s, domain.GetFleetSnapshotRequest{})
	if err != nil {
		return domain.FleetState{}, err
	}
	return res.State, nil
}

// request asks the master actor and maps actor failures to HTTP errors.
func request[T domain.ActorResponse](s *Server, msg any) (T, error) {
	var zero T
	res, err := s.rootContext.RequestFuture(s.masterActor, msg, REQUEST_TIMEOUT).Result()
	if err != nil {
		s.logger.Error("master request failed", zap.String("type", fmt.Sprintf("%T", msg)), zap.Error(err))
		return zero, echo.NewHTTPError(http.StatusServiceUnavailable, "fleet unavailable")
	}
	resp, ok := res.(T)
	if !ok {
		return zero, echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unexpected response %T", res))
	}
	if resp.HasResponseError() {
		return zero, responseError(resp.GetResponseError())
	}
	return resp, nil
}

func responseError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownMachine):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownSite), errors.Is(err, domain.ErrInvalidSource):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
