package terminal

import (
	"bytes"
	"testing"

	"github.com/go-delve/leb128/pkg/config"
	"github.com/go-delve/leb128/pkg/inttype"
)

func TestTrimHistory(t *testing.T) {
	history := "encode 1\ndecode 01\ntype i8\n"
	tests := []struct {
		limit int
		want  string
	}{
		{-1, history},
		{0, ""},
		{1, "type i8\n"},
		{2, "decode 01\ntype i8\n"},
		{3, history},
		{1000, history},
	}
	for _, tc := range tests {
		if got := trimHistory(history, tc.limit); got != tc.want {
			t.Errorf("limit %d: got %q, want %q", tc.limit, got, tc.want)
		}
	}
	if got := trimHistory("", 10); got != "" {
		t.Errorf("empty history: got %q", got)
	}
	if got := trimHistory("a\nb", 1); got != "b" {
		t.Errorf("unterminated last line: got %q", got)
	}
}

func TestTrimHistoryConfigLimit(t *testing.T) {
	limit := 2
	conf := &config.Config{MaxHistory: &limit}
	var buf bytes.Buffer
	for i := 0; i < 5; i++ {
		buf.WriteString("encode 1\n")
	}
	if got := trimHistory(buf.String(), conf.HistoryLimit()); got != "encode 1\nencode 1\n" {
		t.Errorf("got %q", got)
	}
}

func TestPrintGroupsColor(t *testing.T) {
	term, buf := newTestTerm(inttype.U32)
	term.color = true
	term.printGroups([]byte{0xe5, 0x26})
	want := "\033[36me5\033[0m\033[32m26\033[0m"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
