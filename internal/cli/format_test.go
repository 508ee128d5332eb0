package cli

import (
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		currency string
		n        int64
		want     string
	}{
		{"RM", 2000, "RM 2,000"},
		{"RM", -3000, "-RM 3,000"},
		{"RM", 0, "RM 0"},
		{"", 1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.currency, tt.n); got != tt.want {
			t.Errorf("FormatMoney(%q, %d) = %q, want %q", tt.currency, tt.n, got, tt.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney("RM", 500); got != "+RM 500" {
		t.Errorf("positive = %q", got)
	}
	if got := FormatSignedMoney("RM", 0); got != "RM 0" {
		t.Errorf("zero = %q", got)
	}
	if got := FormatDelta("RM", 5000, 10000); got != "-RM 5,000" {
		t.Errorf("delta = %q", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	for secs, want := range map[int]string{30: "0:30", 0: "0:00", 75: "1:15", -4: "0:00"} {
		if got := FormatCountdown(secs); got != want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	for secs, want := range map[int64]string{0: "0s", 45: "45s", 120: "2m", 125: "2m 5s", 3725: "1h 2m"} {
		if got := FormatDuration(secs); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Cost"},
		Rows: [][]string{
			{"Housing", "RM 3,000"},
			{"---"},
			{"Total", "RM 8,000"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	for i, l := range lines[1:] {
		if w, w0 := len([]rune(stripANSI(l))), len([]rune(stripANSI(lines[0]))); w != w0 {
			t.Errorf("line %d width %d, want %d", i+1, w, w0)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]int64{-1500, 0, 500})
	if r := []rune(got); len(r) != 3 || r[0] != '▁' || r[2] != '█' {
		t.Errorf("sparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty series should render nothing")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
