package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/osint/internal/server/middleware"
	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/store"

	"github.com/labstack/echo/v4"
)

const documentContentType = "application/ld+json"

type reportIDParams struct {
	ID string `param:"id" validate:"required,max=128"`
}

func bindReportID(c echo.Context) (string, error) {
	params := new(reportIDParams)
	if err := c.Bind(params); err != nil {
		return "", err
	}
	if err := c.Validate(params); err != nil {
		return "", err
	}
	return params.ID, nil
}

// loadReport fetches the report named by the id path parameter. A nil
// record means the error response has already been written.
func loadReport(c echo.Context) (*store.ReportRecord, error) {
	id, err := bindReportID(c)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	rec, err := app.Store.GetReport(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
		}
		logger.Error("[Server] Failed to load report", "run", id, "err", err)
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return &rec, nil
}

func ListReportsHandler(c echo.Context) error {
	type listReportsParams struct {
		Limit  int `query:"limit" validate:"min=0,max=200"`
		Offset int `query:"offset" validate:"min=0"`
	}

	params := new(listReportsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	res, err := app.Store.ListReports(c.Request().Context(), store.ListOptions{Limit: params.Limit, Offset: params.Offset})
	if err != nil {
		logger.Error("[Server] Failed to list reports", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if res == nil {
		res = []store.ReportRecord{}
	}

	return c.JSON(http.StatusOK, res)
}

func GetReportHandler(c echo.Context) error {
	rec, err := loadReport(c)
	if rec == nil {
		return err
	}
	return c.Blob(http.StatusOK, documentContentType, rec.Document)
}

func GetReportDiagnosticsHandler(c echo.Context) error {
	rec, err := loadReport(c)
	if rec == nil {
		return err
	}
	if len(rec.Diagnostics) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Report has no diagnostics"})
	}
	return c.JSONBlob(http.StatusOK, rec.Diagnostics)
}

// DownloadReportHandler returns a presigned link to the archived document.
func DownloadReportHandler(c echo.Context) error {
	rec, err := loadReport(c)
	if rec == nil {
		return err
	}

	app := c.(*middleware.AppContext).App
	if app.S3 == nil || app.Bucket == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Report archive not configured"})
	}

	url, err := storage.GenerateDownloadLink(c.Request().Context(), app.S3, app.Bucket, rec.ID)
	if err != nil {
		logger.Error("[Server] Failed to generate download link", "run", rec.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
