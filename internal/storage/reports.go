package storage

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/leaselock"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/store"
	pgstore "github.com/OFFIS-RIT/osint/pkg/store/pgx"
	"github.com/OFFIS-RIT/osint/pkg/store/sqlite"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/lib/pq"
)

// OpenReportStore opens the store selected by cfg.StoreAdapter together with
// a locker for run leases. PostgreSQL leases are shared between processes;
// with SQLite they only hold within this process.
func OpenReportStore(ctx context.Context, cfg util.Config) (store.ReportStore, leaselock.Locker, error) {
	switch cfg.StoreAdapter {
	case util.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the %s store", util.StorePostgres)
		}
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("[Store] Using PostgreSQL report store")
		return pgstore.NewReportDBStorage(pool), leaselock.New(pool), nil
	case util.StoreSQLite, "":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("[Store] Using SQLite report store", "path", cfg.SQLitePath)
		return s, leaselock.NewLocal(), nil
	default:
		return nil, nil, fmt.Errorf("unknown store adapter %q", cfg.StoreAdapter)
	}
}

// OpenArchive connects to S3 when cfg names a bucket. Without a bucket it
// returns nil and archiving is skipped.
func OpenArchive(ctx context.Context, cfg util.Config) (*Archive, *s3.Client, error) {
	if cfg.ArchiveBucket == "" {
		return nil, nil, nil
	}
	client, err := NewS3Client(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewArchive(client, cfg.ArchiveBucket), client, nil
}
