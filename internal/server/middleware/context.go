package middleware

import (
	"github.com/OFFIS-RIT/osint/internal/queue"
	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/pkg/research"
	"github.com/OFFIS-RIT/osint/pkg/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App holds the dependencies shared by all handlers. Queue, Keyfunc,
// Archive and S3 may be nil when the deployment does not provide them.
type App struct {
	Store          store.ReportStore
	Client         *research.Client
	Queue          queue.Channel
	Keyfunc        jwt.Keyfunc
	Archive        *storage.Archive
	S3             *s3.Client
	Bucket         string
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
