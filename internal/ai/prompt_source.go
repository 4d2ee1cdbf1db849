package ai

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBasePrompt is used whenever the remote prompt source is missing or
// unreachable. Prospecting degrades, it does not fail.
const DefaultBasePrompt = "以下の取引先一覧から、今後の営業先候補を10件提案してください。"

// PromptSource supplies the base prompt for prospect generation.
type PromptSource interface {
	BasePrompt(ctx context.Context) (string, error)
}

// StaticPromptSource returns a fixed prompt. It backs the default wiring
// when no spreadsheet is configured.
type StaticPromptSource string

func (s StaticPromptSource) BasePrompt(context.Context) (string, error) {
	return string(s), nil
}

// SpreadsheetPromptSource fetches the prompt from a published Google Sheets
// worksheet via its CSV export endpoint. The prompt lives in row 2,
// column B of the worksheet, an editable cell the sales team owns.
type SpreadsheetPromptSource struct {
	exportURL string
	client    *http.Client
}

// NewSpreadsheetPromptSource builds a source for the given spreadsheet ID
// and worksheet name.
func NewSpreadsheetPromptSource(spreadsheetID, worksheet string) *SpreadsheetPromptSource {
	return &SpreadsheetPromptSource{
		exportURL: fmt.Sprintf(
			"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
			spreadsheetID, url.QueryEscape(worksheet),
		),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SpreadsheetPromptSource) BasePrompt(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.exportURL, nil)
	if err != nil {
		return "", fmt.Errorf("build prompt request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch prompt sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prompt sheet returned status %d", resp.StatusCode)
	}

	r := csv.NewReader(io.LimitReader(resp.Body, 1<<20))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse prompt sheet: %w", err)
	}
	if len(rows) < 2 || len(rows[1]) < 2 || rows[1][1] == "" {
		return "", fmt.Errorf("prompt cell (row 2, column B) is empty")
	}
	return rows[1][1], nil
}
