package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Traumerei-sf/tokumei-AI/internal/store"
)

// UploadedFile is one file received from an adapter, already read into memory.
type UploadedFile struct {
	Name string
	Data []byte
}

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CheckFiles validates the uploaded journal (and optional balance sheet)
	// without running the diagnostic. balanceSheet may be nil.
	CheckFiles(ctx context.Context, journal *UploadedFile, balanceSheet *UploadedFile) (*CheckFilesResult, error)

	// Analyze runs the full diagnostic: validation, normalization, monthly
	// aggregation, rule evaluation and report rendering. balanceSheet may be
	// nil, in which case balance-sheet dependent rules degrade gracefully.
	Analyze(ctx context.Context, journal *UploadedFile, balanceSheet *UploadedFile) (*AnalysisResult, error)

	// BuildProspectList generates the sales-prospecting candidate list from
	// the counterparties of a previously analyzed journal.
	BuildProspectList(ctx context.Context, journal *UploadedFile) (*ProspectResult, error)

	// RecentRuns lists archived diagnostic runs, newest first. Empty when no
	// archive store is configured.
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)

	// ArchivedRun loads one archived run with its findings.
	ArchivedRun(ctx context.Context, id uuid.UUID) (*store.Run, error)
}
