package app

import (
	"github.com/google/uuid"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

// CheckFilesResult is returned by CheckFiles.
type CheckFilesResult struct {
	Checks []core.CheckResult
	OK     bool
}

// AnalysisResult is returned by Analyze.
type AnalysisResult struct {
	RunID           uuid.UUID
	Checks          []core.CheckResult
	Findings        []core.Finding
	BalanceSummary  core.BalanceSummary
	MonthsCount     int
	RedCount        int
	SummaryMessage  string
	DocumentHTML    []byte
	PreviewMarkdown string
}

// ProspectResult is returned by BuildProspectList.
type ProspectResult struct {
	Partners []string
	List     *ai.ProspectList
	CSV      []byte
	XLSX     []byte
}
