package queue

import (
	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/research"
)

// QueueRunMsg asks a worker to turn a research run into a stored report.
type QueueRunMsg struct {
	Message       string       `json:"message"`
	CorrelationID string       `json:"correlation_id"`
	Run           research.Run `json:"run"`
}

// ReportCompletedMsg is published on TopicReportCompleted.
type ReportCompletedMsg struct {
	CorrelationID string                  `json:"correlation_id,omitempty"`
	RunID         string                  `json:"run_id"`
	Status        report.CompletionStatus `json:"status"`
	EntityCount   int                     `json:"entity_count"`
	Coverage      float64                 `json:"coverage_percentage"`
	ArchiveKey    string                  `json:"archive_key,omitempty"`
}
