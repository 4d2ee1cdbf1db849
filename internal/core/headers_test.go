package core_test

import (
	"testing"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

func TestResolveHeaders(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    map[string]string
	}{
		{
			name:    "yayoi style export",
			columns: []string{"取引日", "借方勘定科目", "借方金額", "貸方勘定科目", "貸方金額"},
			want: map[string]string{
				"取引日":    core.FieldDate,
				"借方勘定科目": core.FieldDebitAccount,
				"借方金額":   core.FieldDebitAmount,
				"貸方勘定科目": core.FieldCreditAccount,
				"貸方金額":   core.FieldCreditAmount,
			},
		},
		{
			name:    "english export",
			columns: []string{"Date", "Debit Account", "Debit Amount", "Credit Account", "Credit Amount"},
			want: map[string]string{
				"Date":           core.FieldDate,
				"Debit Account":  core.FieldDebitAccount,
				"Debit Amount":   core.FieldDebitAmount,
				"Credit Account": core.FieldCreditAccount,
				"Credit Amount":  core.FieldCreditAmount,
			},
		},
		{
			name:    "unknown columns pass through unmapped",
			columns: []string{"取引日", "メモ", "部門"},
			want: map[string]string{
				"取引日": core.FieldDate,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ResolveHeaders(tt.columns)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d mappings, want %d: %v", len(got), len(tt.want), got)
			}
			for raw, field := range tt.want {
				if got[raw] != field {
					t.Errorf("column %q resolved to %q, want %q", raw, got[raw], field)
				}
			}
		})
	}
}

// Resolving an already canonical header must be a no-op, so a table can be
// normalized twice without damage.
func TestResolveHeaders_CanonicalIdempotent(t *testing.T) {
	got := core.ResolveHeaders(core.CanonicalFields)
	for _, f := range core.CanonicalFields {
		if got[f] != f {
			t.Errorf("canonical field %q resolved to %q, want itself", f, got[f])
		}
	}
}

func TestValidateAliasTable(t *testing.T) {
	if err := core.ValidateAliasTable(); err != nil {
		t.Fatalf("alias table invalid: %v", err)
	}
}
