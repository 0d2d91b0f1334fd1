package logger

import (
	"strings"
	"testing"
)

var (
	ansiSample  = "\x1b[36mRefreshed\x1b[0m model runs for \x1b[1;33mmodelstatus\x1b[0m"
	strippedOut = "Refreshed model runs for modelstatus"
)

func TestStripAnsiCodes(t *testing.T) {
	got := stripAnsiCodes(ansiSample)
	if got != strippedOut {
		t.Errorf("stripAnsiCodes failed: got %q, want %q", got, strippedOut)
	}
}

func TestStripAnsiCodes_PlainPassthrough(t *testing.T) {
	plain := "no escapes here"
	if got := stripAnsiCodes(plain); got != plain {
		t.Errorf("stripAnsiCodes changed plain text: got %q", got)
	}
}

func buildLargeAnsiInput(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(ansiSample)
	}
	return b.String()
}

func BenchmarkStripAnsiCodes_Large(b *testing.B) {
	large := buildLargeAnsiInput(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stripAnsiCodes(large)
	}
}
