package routes

import (
	"net/http"
	"sync"

	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/report"

	"github.com/labstack/echo/v4"
)

var reportSchema = sync.OnceValues(report.Schema)

func GetReportSchemaHandler(c echo.Context) error {
	schema, err := reportSchema()
	if err != nil {
		logger.Error("[Server] Failed to build report schema", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.Blob(http.StatusOK, "application/schema+json", schema)
}
