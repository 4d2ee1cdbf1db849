package app_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/app"
	"github.com/Traumerei-sf/tokumei-AI/internal/core"
	"github.com/Traumerei-sf/tokumei-AI/internal/report"
)

// fakeAgent satisfies ai.ProspectorService without a network call.
type fakeAgent struct {
	prompt string
	list   *ai.ProspectList
	err    error
}

func (f *fakeAgent) GenerateProspects(_ context.Context, prompt string) (*ai.ProspectList, error) {
	f.prompt = prompt
	return f.list, f.err
}

func newService(t *testing.T, agent ai.ProspectorService) app.ApplicationService {
	t.Helper()
	assembler, err := report.NewAssembler()
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return app.NewAppService(assembler, agent, ai.StaticPromptSource(ai.DefaultBasePrompt), nil, zerolog.Nop())
}

func sampleJournalCSV() []byte {
	var b bytes.Buffer
	b.WriteString("取引日,借方科目,借方金額,借方取引先,貸方科目,貸方金額,貸方取引先\n")
	months := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	for _, m := range months {
		b.WriteString("2023-" + m + "-10,現金,100000,,売上高,100000,株式会社A\n")
		b.WriteString("2023-" + m + "-15,仕入高,40000,仕入先X,買掛金,40000,\n")
	}
	return b.Bytes()
}

func sampleBalanceSheetCSV() []byte {
	return []byte("勘定科目,期首残高,期末残高\n現金,10000,50000\n普通預金,100000,150000\n")
}

func TestCheckFiles(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	t.Run("valid journal passes", func(t *testing.T) {
		res, err := svc.CheckFiles(ctx, &app.UploadedFile{Name: "j.csv", Data: sampleJournalCSV()}, nil)
		if err != nil {
			t.Fatalf("CheckFiles: %v", err)
		}
		if !res.OK {
			t.Errorf("checks failed: %+v", res.Checks)
		}
	})

	t.Run("undecodable journal fails with decode message", func(t *testing.T) {
		res, err := svc.CheckFiles(ctx, &app.UploadedFile{Name: "j.csv", Data: []byte{0x93}}, nil)
		if err != nil {
			t.Fatalf("CheckFiles: %v", err)
		}
		if res.OK {
			t.Fatal("expected failed checks")
		}
		if res.Checks[0].Message != core.MsgJournalDecodeFailed {
			t.Errorf("message = %q", res.Checks[0].Message)
		}
	})

	t.Run("short span journal fails", func(t *testing.T) {
		short := []byte("取引日,借方科目,貸方科目\n2023-01-01,現金,売上高\n2023-03-01,現金,売上高\n")
		res, err := svc.CheckFiles(ctx, &app.UploadedFile{Name: "j.csv", Data: short}, nil)
		if err != nil {
			t.Fatalf("CheckFiles: %v", err)
		}
		if res.OK {
			t.Fatal("expected failed checks for a 3 month journal")
		}
	})
}

func TestAnalyze(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	result, err := svc.Analyze(ctx,
		&app.UploadedFile{Name: "journal.csv", Data: sampleJournalCSV()},
		&app.UploadedFile{Name: "bs.csv", Data: sampleBalanceSheetCSV()})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Findings) != 11 {
		t.Fatalf("got %d findings, want 11", len(result.Findings))
	}
	if result.MonthsCount != 12 {
		t.Errorf("months count = %d, want 12", result.MonthsCount)
	}
	if !result.BalanceSummary.Present {
		t.Error("balance summary not extracted")
	}
	if result.BalanceSummary.CashTotal.String() != "200000" {
		t.Errorf("cash total = %s, want 200000", result.BalanceSummary.CashTotal)
	}
	if result.DocumentHTML == nil {
		t.Fatal("no document rendered")
	}
	if !strings.Contains(string(result.DocumentHTML), "特命AI 診断レポート") {
		t.Error("document missing report title")
	}
	if !strings.HasPrefix(result.PreviewMarkdown, "### ") {
		t.Error("preview is not markdown")
	}
	if result.SummaryMessage == "" {
		t.Error("no summary message")
	}
}

func TestAnalyze_StopsOnFailedChecks(t *testing.T) {
	svc := newService(t, nil)
	short := []byte("取引日,借方科目,貸方科目\n2023-01-01,現金,売上高\n")

	result, err := svc.Analyze(context.Background(), &app.UploadedFile{Name: "j.csv", Data: short}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.DocumentHTML != nil {
		t.Error("document rendered despite failed checks")
	}
	if len(result.Findings) != 0 {
		t.Errorf("got %d findings, want none", len(result.Findings))
	}
}

func TestBuildProspectList(t *testing.T) {
	agent := &fakeAgent{list: &ai.ProspectList{BusinessList: []ai.Prospect{
		{CompanyName: "新規株式会社", HomepageURL: "https://example.jp", Industry: "製造業", Description: "部品製造", Region: "大阪府"},
	}}}
	svc := newService(t, agent)

	res, err := svc.BuildProspectList(context.Background(), &app.UploadedFile{Name: "j.csv", Data: sampleJournalCSV()})
	if err != nil {
		t.Fatalf("BuildProspectList: %v", err)
	}

	if len(res.Partners) != 1 || res.Partners[0] != "株式会社A" {
		t.Errorf("partners = %v, want [株式会社A]", res.Partners)
	}
	if !strings.Contains(agent.prompt, "株式会社A") {
		t.Error("agent prompt missing the counterparty roster")
	}
	if !bytes.HasPrefix(res.CSV, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("prospect CSV missing UTF-8 BOM")
	}
	if !bytes.Contains(res.CSV, []byte("新規株式会社")) {
		t.Error("prospect CSV missing company name")
	}
	if len(res.XLSX) == 0 {
		t.Error("no XLSX produced")
	}
}

func TestRunArchive_Unconfigured(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	runs, err := svc.RecentRuns(ctx, 10)
	if err != nil || runs != nil {
		t.Errorf("RecentRuns = %v, %v; want empty without a store", runs, err)
	}
	if _, err := svc.ArchivedRun(ctx, uuid.New()); err == nil {
		t.Error("expected configuration error without a store")
	}
}

func TestBuildProspectList_NoAgent(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.BuildProspectList(context.Background(), &app.UploadedFile{Name: "j.csv", Data: sampleJournalCSV()})
	if err == nil {
		t.Fatal("expected configuration error without an agent")
	}
}
