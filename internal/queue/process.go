package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/leaselock"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/research"
	"github.com/OFFIS-RIT/osint/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const saveAttempts = 3

var saveBackoff = util.Backoff{Initial: 200 * time.Millisecond, Max: 2 * time.Second}

// ErrInvalidMessage marks a message that can never be processed. Such
// messages go straight to the dead-letter queue.
var ErrInvalidMessage = errors.New("invalid run message")

// Processor handles run messages. Archive and Channel are optional.
type Processor struct {
	Client  *research.Client
	Store   store.ReportStore
	Locker  leaselock.Locker
	Archive *storage.Archive
	Channel Channel
}

// NewRunMessage wraps run for RunQueue, assigning a run id if it has none.
func NewRunMessage(run research.Run, message string) (QueueRunMsg, error) {
	if run.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return QueueRunMsg{}, fmt.Errorf("failed to generate run id: %w", err)
		}
		run.ID = id
	}
	correlationID, err := gonanoid.New()
	if err != nil {
		return QueueRunMsg{}, fmt.Errorf("failed to generate correlation id: %w", err)
	}
	return QueueRunMsg{Message: message, CorrelationID: correlationID, Run: run}, nil
}

// EnqueueRun publishes a run to RunQueue.
func EnqueueRun(ch Channel, msg QueueRunMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal run message: %w", err)
	}
	return PublishFIFO(ch, RunQueue, data)
}

// ProcessRunMessage processes the run in msg under its lease, stores the
// report, archives it and announces it on TopicReportCompleted.
func (p *Processor) ProcessRunMessage(ctx context.Context, msg []byte) error {
	var data QueueRunMsg
	if err := json.Unmarshal(msg, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if data.Run.ID == "" {
		return fmt.Errorf("%w: missing run id", ErrInvalidMessage)
	}
	run := data.Run

	logger.Info("[Queue] Processing run", "run", run.ID, "correlation_id", data.CorrelationID)

	return p.Locker.WithLease(ctx, leaselock.RunKey(run.ID), leaselock.Options{}, func(ctx context.Context) error {
		res, err := p.Client.Process(ctx, run)
		if err != nil {
			if ctx.Err() == nil {
				return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
			}
			return err
		}

		rec, err := store.NewReportRecord(res.Report)
		if err != nil {
			return err
		}
		err = util.RetryErrWithContext(ctx, saveAttempts, saveBackoff, func(ctx context.Context) error {
			return p.Store.SaveReport(ctx, rec)
		})
		if err != nil {
			return fmt.Errorf("failed to save report %s: %w", run.ID, err)
		}

		var archiveKey string
		if p.Archive != nil {
			archiveKey, err = p.Archive.PutReport(ctx, run.ID, rec.Document)
			if err != nil {
				logger.Warn("[Queue] Failed to archive report", "run", run.ID, "err", err)
			}
		}

		if p.Channel != nil {
			event := ReportCompletedMsg{
				CorrelationID: data.CorrelationID,
				RunID:         run.ID,
				Status:        res.Report.CompletionStatus,
				EntityCount:   len(res.Report.Entities),
				Coverage:      res.Diagnostics.CoveragePercentage,
				ArchiveKey:    archiveKey,
			}
			body, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal completion event: %w", err)
			}
			if err := PublishTopic(p.Channel, TopicReportCompleted, body); err != nil {
				logger.Warn("[Queue] Failed to publish completion event", "run", run.ID, "err", err)
			}
		}

		logger.Info("[Queue] Stored report", "run", run.ID, "status", res.Report.CompletionStatus, "entities", len(res.Report.Entities))
		return nil
	})
}
