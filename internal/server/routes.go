package server

import (
	"net/http"

	"github.com/OFFIS-RIT/osint/internal/server/middleware"
	"github.com/OFFIS-RIT/osint/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Run routes
	apiRoutes.POST("/runs", routes.CreateRunHandler, middleware.RequirePermission(middleware.PermissionReportCreate))
	apiRoutes.POST("/runs/queue", routes.QueueRunHandler, middleware.RequirePermission(middleware.PermissionReportCreate))

	// Report routes
	apiRoutes.GET("/reports", routes.ListReportsHandler, middleware.RequirePermission(middleware.PermissionReportView))
	apiRoutes.GET("/reports/:id", routes.GetReportHandler, middleware.RequirePermission(middleware.PermissionReportView))
	apiRoutes.GET("/reports/:id/diagnostics", routes.GetReportDiagnosticsHandler, middleware.RequirePermission(middleware.PermissionReportView))
	apiRoutes.GET("/reports/:id/download", routes.DownloadReportHandler, middleware.RequirePermission(middleware.PermissionReportDownload))

	// Schema routes
	apiRoutes.GET("/schema/report", routes.GetReportSchemaHandler)
}
