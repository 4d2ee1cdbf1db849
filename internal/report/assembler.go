package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
	webui "github.com/Traumerei-sf/tokumei-AI/web"
)

// previewItems are the three designated items the condensed preview shows.
var previewItems = []string{
	core.ItemCashThinness,
	core.ItemPayablesTrend,
	core.ItemEntryDelay,
}

// Assembler renders findings into the diagnostic document and its preview.
type Assembler struct {
	doc *template.Template
}

// NewAssembler parses the embedded report template.
func NewAssembler() (*Assembler, error) {
	doc, err := template.ParseFS(webui.Templates, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Assembler{doc: doc}, nil
}

type documentRow struct {
	Category string
	Item     string
	Result   string
	Comment  string
	Essence  string
	Class    string
}

type documentData struct {
	RedCount       int
	SummaryMessage string
	Rows           []documentRow
}

// RenderDocument renders the full print-ready report: headline, the 5-column
// findings table with severity-tinted rows, and the closing letter.
func (a *Assembler) RenderDocument(findings []core.Finding) ([]byte, error) {
	red, summary := Summarize(findings)
	data := documentData{RedCount: red, SummaryMessage: summary}
	for _, f := range findings {
		data.Rows = append(data.Rows, documentRow{
			Category: f.Category,
			Item:     f.Item,
			Result:   f.Result,
			Comment:  f.Comment,
			Essence:  RootCause(f.Item),
			Class:    severityClass(f.Severity),
		})
	}

	var buf bytes.Buffer
	if err := a.doc.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPreview builds the condensed Markdown preview, limited to the three
// designated cash-and-quality items.
func RenderPreview(findings []core.Finding) string {
	_, summary := Summarize(findings)

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", summary)
	b.WriteString("| 評価項目 | 結果 | コメント |\n| :--- | :--- | :--- |\n")
	for _, f := range findings {
		if !isPreviewItem(f.Item) {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s %s | %s |\n", f.Item, severityEmoji(f.Severity), f.Result, f.Comment)
	}
	return b.String()
}

// Summarize counts red findings and produces the report headline.
func Summarize(findings []core.Finding) (redCount int, message string) {
	for _, f := range findings {
		if f.Severity == core.SeverityRed {
			redCount++
		}
	}
	switch redCount {
	case 0:
		message = "経営の存続に関わる【赤信号】はありませんでした。"
	case 1:
		message = "経営の存続に関わる【赤信号】が一つありました。"
	default:
		message = "経営の存続に関わる複数の【赤信号】がありました。"
	}
	return redCount, message
}

func isPreviewItem(item string) bool {
	for _, p := range previewItems {
		if item == p {
			return true
		}
	}
	return false
}

func severityClass(s core.Severity) string {
	switch s {
	case core.SeverityRed:
		return "red"
	case core.SeverityBlue:
		return "blue"
	default:
		return "grey"
	}
}

func severityEmoji(s core.Severity) string {
	switch s {
	case core.SeverityRed:
		return "🔴"
	case core.SeverityBlue:
		return "🔵"
	default:
		return "⚪"
	}
}
