package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/osint/internal/queue"
	"github.com/OFFIS-RIT/osint/internal/server/middleware"
	"github.com/OFFIS-RIT/osint/pkg/coverage"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/research"
	"github.com/OFFIS-RIT/osint/pkg/store"

	"github.com/labstack/echo/v4"
)

type createRunData struct {
	RunID               string         `json:"run_id" validate:"omitempty,max=128"`
	Title               string         `json:"title" validate:"max=500"`
	Primary             string         `json:"primary"`
	Enrichment          string         `json:"enrichment"`
	Plan                *coverage.Plan `json:"plan"`
	CompletedDimensions []string       `json:"completed_dimensions" validate:"dive,required"`
	Attributions        map[string]int `json:"attributions" validate:"dive,min=0"`
}

func (d createRunData) run() research.Run {
	return research.Run{
		ID:                  d.RunID,
		Title:               d.Title,
		Primary:             d.Primary,
		Enrichment:          d.Enrichment,
		Plan:                d.Plan,
		CompletedDimensions: d.CompletedDimensions,
		Attributions:        d.Attributions,
	}
}

func bindRun(c echo.Context) (*createRunData, error) {
	data := new(createRunData)
	if err := c.Bind(data); err != nil {
		return nil, err
	}
	if err := c.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// CreateRunHandler processes a run synchronously, stores the report and
// responds with its document.
func CreateRunHandler(c echo.Context) error {
	data, err := bindRun(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	res, err := app.Client.Process(ctx, data.run())
	if err != nil {
		if errors.Is(err, coverage.ErrDuplicateNode) || errors.Is(err, coverage.ErrInvalidPlan) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.Error("[Server] Failed to process run", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	rec, err := store.NewReportRecord(res.Report)
	if err != nil {
		logger.Error("[Server] Failed to render report", "run", res.Report.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := app.Store.SaveReport(ctx, rec); err != nil {
		logger.Error("[Server] Failed to save report", "run", rec.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if app.Archive != nil {
		if _, err := app.Archive.PutReport(ctx, rec.ID, rec.Document); err != nil {
			logger.Warn("[Server] Failed to archive report", "run", rec.ID, "err", err)
		}
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/reports/"+rec.ID)
	return c.Blob(http.StatusCreated, documentContentType, rec.Document)
}

// QueueRunHandler hands a run to the workers.
func QueueRunHandler(c echo.Context) error {
	type queueRunResponse struct {
		Message       string `json:"message"`
		RunID         string `json:"run_id,omitempty"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data, err := bindRun(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, queueRunResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, queueRunResponse{Message: "Queue not configured"})
	}

	msg, err := queue.NewRunMessage(data.run(), "Run submitted via API")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, queueRunResponse{Message: "Internal server error"})
	}
	if err := queue.EnqueueRun(app.Queue, msg); err != nil {
		logger.Error("[Server] Failed to enqueue run", "run", msg.Run.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, queueRunResponse{Message: "Failed to enqueue run"})
	}

	return c.JSON(http.StatusAccepted, queueRunResponse{
		Message:       "Run queued",
		RunID:         msg.Run.ID,
		CorrelationID: msg.CorrelationID,
	})
}
