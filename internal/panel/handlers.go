package panel

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/determined-ai/memberpanel/internal/dispatch"
	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

type crashRequest struct {
	ProcessorID model.ProcessorID `json:"processor_id"`
	Label       string            `json:"label"`
}

func (s *Server) getView(c echo.Context) error {
	return c.JSON(http.StatusOK, s.viewer.State())
}

func (s *Server) postStart(c echo.Context) error {
	cfg, err := bindConfig(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.commands.SubmitInit(c.Request().Context(), cfg); err != nil {
		return commandError(err)
	}
	return c.JSON(http.StatusOK, s.viewer.State())
}

func (s *Server) postCrash(c echo.Context) error {
	var req crashRequest
	if isJSON(c) {
		if err := c.Bind(&req); err != nil {
			return err
		}
	} else {
		req.ProcessorID = model.ProcessorID(c.FormValue("processor_id"))
		req.Label = c.FormValue("label")
	}

	id := req.ProcessorID
	if id == "" && req.Label != "" {
		parsed, err := dispatch.ProcessorIDFromLabel(req.Label)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		id = parsed
	}
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "processor_id is required")
	}

	if err := s.commands.SubmitCrash(c.Request().Context(), id); err != nil {
		return commandError(err)
	}
	return c.JSON(http.StatusOK, s.viewer.State())
}

func bindConfig(c echo.Context) (simconfig.Config, error) {
	if isJSON(c) {
		var cfg simconfig.Config
		if err := c.Bind(&cfg); err != nil {
			return cfg, errors.New("malformed simulation config")
		}
		return cfg, nil
	}
	return simconfig.Parse(
		c.FormValue("num_processors"),
		c.FormValue("max_clock_sync_error"),
		c.FormValue("broadcast_delay"),
		c.FormValue("datagram_delay"),
		c.FormValue("check_in_period"),
	)
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// commandError maps a failed command to a response: bad input is the operator's to fix, anything
// else came from the simulator.
func commandError(err error) error {
	var verr check.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadGateway, err.Error())
}
