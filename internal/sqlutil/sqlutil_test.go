package sqlutil

import "testing"

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "people", `"people"`},
		{"empty", "", `""`},
		{"space", "user table", `"user table"`},
		{"embedded quote", `we"ird`, `"we""ird"`},
		{"only quotes", `""`, `""""""`},
		{"keyword", "select", `"select"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteIdent(tt.input); got != tt.want {
				t.Errorf("QuoteIdent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinIdents(t *testing.T) {
	got := JoinIdents([]string{"id", "full name", `o"dd`})
	want := `"id", "full name", "o""dd"`
	if got != want {
		t.Errorf("JoinIdents = %q, want %q", got, want)
	}

	if got := JoinIdents(nil); got != "" {
		t.Errorf("JoinIdents(nil) = %q, want empty", got)
	}
}

func TestQuoteIdents(t *testing.T) {
	got := QuoteIdents([]string{"a", "b"})
	if len(got) != 2 || got[0] != `"a"` || got[1] != `"b"` {
		t.Errorf("QuoteIdents = %v", got)
	}
}
