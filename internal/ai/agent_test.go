package ai_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

func rec(debitAcct, debitPartner, creditAcct, creditPartner string) core.JournalRecord {
	return core.JournalRecord{
		DebitAccount:  debitAcct,
		DebitPartner:  debitPartner,
		CreditAccount: creditAcct,
		CreditPartner: creditPartner,
	}
}

func TestExtractPartners(t *testing.T) {
	table := &core.JournalTable{Records: []core.JournalRecord{
		rec("現金", "", "売上高", "株式会社A"),
		rec("売掛金", "株式会社B", "売上高", "株式会社A"), // duplicate A, B on debit side
		rec("受取手形", "株式会社C", "売掛金", " 株式会社D "), // partner whitespace trimmed
		rec("仕入高", "仕入先X", "買掛金", "仕入先X"),      // not a sales account
		rec("現金", "", "売上高", ""),               // empty partner ignored
	}}

	got := ai.ExtractPartners(table)
	want := []string{"株式会社A", "株式会社B", "株式会社C", "株式会社D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPartners = %v, want %v", got, want)
	}
}

func TestExtractPartners_Empty(t *testing.T) {
	got := ai.ExtractPartners(&core.JournalTable{})
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestBuildProspectPrompt(t *testing.T) {
	prompt := ai.BuildProspectPrompt("候補を提案してください。", []string{"株式会社A", "株式会社B"})
	if !strings.HasPrefix(prompt, "候補を提案してください。") {
		t.Errorf("prompt does not start with the base prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "【既存取引先一覧】") {
		t.Error("prompt missing roster heading")
	}
	if !strings.Contains(prompt, "株式会社A\n株式会社B") {
		t.Error("prompt missing newline-joined partner roster")
	}
}

func TestStaticPromptSource(t *testing.T) {
	src := ai.StaticPromptSource("固定プロンプト")
	got, err := src.BasePrompt(context.Background())
	if err != nil {
		t.Fatalf("BasePrompt: %v", err)
	}
	if got != "固定プロンプト" {
		t.Errorf("got %q", got)
	}
}
