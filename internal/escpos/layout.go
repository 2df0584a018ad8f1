// internal/escpos/layout.go
package escpos

// Wrap inserts a newline after every columns characters of text. Columns are
// counted over the whole input, existing newlines included, so this is a
// fixed-modulus break rather than a line-aware wrap. No break is added next to
// an existing newline, and none at the very end. columns <= 0 returns text
// unchanged.
func Wrap(text string, columns int) string {
	if columns <= 0 {
		return text
	}

	runes := []rune(text)
	out := make([]rune, 0, len(runes)+len(runes)/columns)
	for i, r := range runes {
		out = append(out, r)

		n := i + 1
		if n%columns != 0 || n == len(runes) {
			continue
		}
		if r == '\n' || runes[n] == '\n' {
			continue
		}
		out = append(out, '\n')
	}
	return string(out)
}
