package core_test

import (
	"testing"

	"github.com/Traumerei-sf/tokumei-AI/internal/core"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string // YYYY-MM-DD, empty means nil expected
	}{
		{"hyphen", "2024-03-15", "2024-03-15"},
		{"slash", "2024/03/15", "2024-03-15"},
		{"slash no zero pad", "2024/3/5", "2024-03-05"},
		{"kanji", "2024年3月15日", "2024-03-15"},
		{"datetime", "2024-03-15 09:30:00", "2024-03-15"},
		{"whitespace trimmed", " 2024-03-15 ", "2024-03-15"},
		{"empty", "", ""},
		{"garbage", "not a date", ""},
		{"month out of range", "2024-13-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ParseDate(tt.cell)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ParseDate(%q) = %v, want nil", tt.cell, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.cell, tt.want)
			}
			if s := got.Format("2006-01-02"); s != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.cell, s, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		cell      string
		wantValid bool
		want      string
	}{
		{"plain", "1000", true, "1000"},
		{"thousands separator", "1,234,567", true, "1234567"},
		{"currency mark", "¥5000", true, "5000"},
		{"negative", "-300", true, "-300"},
		{"decimal point", "12.5", true, "12.5"},
		{"empty is null", "", false, ""},
		{"whitespace only is null", "   ", false, ""},
		{"malformed degrades to zero", "三千円", true, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ParseAmount(tt.cell)
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseAmount(%q).Valid = %v, want %v", tt.cell, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Decimal.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.cell, got.Decimal, tt.want)
			}
		})
	}
}
