package escpos

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		text    string
		columns int
		want    string
	}{
		{"ABCDEFGHIJ", 3, "ABC\nDEF\nGHI\nJ"},
		{"ABCDEFGHI", 3, "ABC\nDEF\nGHI"},
		{"ABCDEF", 0, "ABCDEF"},
		{"ABCDEF", -1, "ABCDEF"},
		{"", 4, ""},
		{"AB", 5, "AB"},
		// counting runs across existing newlines
		{"AB\nCDEFG", 3, "AB\nCDE\nFG"},
		// no doubled break next to an existing newline
		{"ABC\nDEF", 3, "ABC\nDE\nF"},
		{"AB\nDEF", 3, "AB\nDEF"},
		{"čćžšđ", 2, "čć\nžš\nđ"},
	}

	for _, tt := range tests {
		if got := Wrap(tt.text, tt.columns); got != tt.want {
			t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.columns, got, tt.want)
		}
	}
}
