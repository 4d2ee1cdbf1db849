package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/core"
	"github.com/Traumerei-sf/tokumei-AI/internal/report"
	"github.com/Traumerei-sf/tokumei-AI/internal/store"
	"github.com/Traumerei-sf/tokumei-AI/internal/tabular"
)

type appService struct {
	assembler    *report.Assembler
	agent        ai.ProspectorService
	promptSource ai.PromptSource
	runs         *store.Store
	log          zerolog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent, promptSource and runs are optional; prospecting returns an error
// without an agent, and runs are simply not archived without a store.
func NewAppService(
	assembler *report.Assembler,
	agent ai.ProspectorService,
	promptSource ai.PromptSource,
	runs *store.Store,
	log zerolog.Logger,
) ApplicationService {
	return &appService{
		assembler:    assembler,
		agent:        agent,
		promptSource: promptSource,
		runs:         runs,
		log:          log,
	}
}

// CheckFiles validates the uploaded files without running the diagnostic.
func (s *appService) CheckFiles(ctx context.Context, journal, balanceSheet *UploadedFile) (*CheckFilesResult, error) {
	checks, _, _, ok := s.readAndCheck(journal, balanceSheet)
	return &CheckFilesResult{Checks: checks, OK: ok}, nil
}

// Analyze runs validation, normalization, aggregation, the rule set and
// report rendering in one pass.
func (s *appService) Analyze(ctx context.Context, journal, balanceSheet *UploadedFile) (*AnalysisResult, error) {
	checks, journalRows, bsRows, ok := s.readAndCheck(journal, balanceSheet)
	result := &AnalysisResult{RunID: uuid.New(), Checks: checks}
	if !ok {
		return result, nil
	}

	table, err := core.NormalizeJournal(journalRows)
	if err != nil {
		return nil, fmt.Errorf("normalize journal: %w", err)
	}

	var bs core.BalanceSummary
	if bsRows != nil {
		bs = core.ExtractBalanceSummary(bsRows)
	}

	agg := core.Aggregate(table)
	findings := core.EvaluateRules(agg, bs)
	redCount, summary := report.Summarize(findings)

	doc, err := s.assembler.RenderDocument(findings)
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	result.Findings = findings
	result.BalanceSummary = bs
	result.MonthsCount = agg.MonthsCount
	result.RedCount = redCount
	result.SummaryMessage = summary
	result.DocumentHTML = doc
	result.PreviewMarkdown = report.RenderPreview(findings)

	s.archive(ctx, journal.Name, result)

	s.log.Info().
		Str("run_id", result.RunID.String()).
		Int("months", agg.MonthsCount).
		Int("red_count", redCount).
		Msg("analysis complete")
	return result, nil
}

// archive persists the run when a store is wired. Archive failures are
// logged and swallowed, analysis output must not depend on the database.
func (s *appService) archive(ctx context.Context, journalName string, result *AnalysisResult) {
	if s.runs == nil {
		return
	}
	err := s.runs.SaveRun(ctx, &store.Run{
		ID:             result.RunID,
		JournalName:    journalName,
		MonthsCount:    result.MonthsCount,
		RedCount:       result.RedCount,
		SummaryMessage: result.SummaryMessage,
		Findings:       result.Findings,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("run_id", result.RunID.String()).Msg("failed to archive run")
	}
}

// BuildProspectList extracts the journal's sales counterparties and asks the
// generation agent for new-candidate recommendations.
func (s *appService) BuildProspectList(ctx context.Context, journal *UploadedFile) (*ProspectResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("prospecting is not configured: missing OPENAI_API_KEY")
	}

	rows, err := tabular.ReadTable(journal.Name, journal.Data)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	table, err := core.NormalizeJournal(rows)
	if err != nil {
		return nil, fmt.Errorf("normalize journal: %w", err)
	}

	partners := ai.ExtractPartners(table)
	if len(partners) == 0 {
		return nil, fmt.Errorf("no sales counterparties found in journal")
	}

	basePrompt, err := s.promptSource.BasePrompt(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("prompt source unavailable, using default prompt")
		basePrompt = ai.DefaultBasePrompt
	}

	list, err := s.agent.GenerateProspects(ctx, ai.BuildProspectPrompt(basePrompt, partners))
	if err != nil {
		return nil, fmt.Errorf("generate prospects: %w", err)
	}

	csvBytes, err := report.ProspectCSV(list)
	if err != nil {
		return nil, fmt.Errorf("encode prospect csv: %w", err)
	}
	xlsxBytes, err := report.ProspectXLSX(list)
	if err != nil {
		return nil, fmt.Errorf("encode prospect xlsx: %w", err)
	}

	s.log.Info().
		Int("partners", len(partners)).
		Int("prospects", len(list.BusinessList)).
		Msg("prospect list generated")
	return &ProspectResult{Partners: partners, List: list, CSV: csvBytes, XLSX: xlsxBytes}, nil
}

// RecentRuns lists archived runs, newest first.
func (s *appService) RecentRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// ArchivedRun loads one archived run with its findings.
func (s *appService) ArchivedRun(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run archive is not configured: missing DATABASE_URL")
	}
	return s.runs.GetRun(ctx, id)
}

// readAndCheck decodes both uploads and runs the structural checks. The
// returned row slices are nil when the corresponding file failed to decode
// or was not provided.
func (s *appService) readAndCheck(journal, balanceSheet *UploadedFile) (checks []core.CheckResult, journalRows, bsRows [][]string, ok bool) {
	journalRows, err := tabular.ReadTable(journal.Name, journal.Data)
	if err != nil {
		checks = append(checks, core.CheckResult{
			Message:  core.MsgJournalDecodeFailed,
			Severity: core.SeverityRed,
		})
		return checks, nil, nil, false
	}

	if balanceSheet != nil {
		bsRows, err = tabular.ReadTable(balanceSheet.Name, balanceSheet.Data)
		if err != nil {
			checks = append(checks, core.CheckResult{
				Message:  core.MsgBalanceSheetDecodeFailed,
				Severity: core.SeverityRed,
			})
			return checks, nil, nil, false
		}
	}

	checks = append(checks, core.CheckFiles(journalRows, bsRows)...)
	ok = true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return checks, journalRows, bsRows, ok
}
