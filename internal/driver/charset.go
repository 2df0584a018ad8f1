// internal/driver/charset.go
package driver

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets maps configuration names to character encodings. The printers
// are strapped to one code page in firmware; the session has to match it.
var charsets = map[string]encoding.Encoding{
	"utf-8":        encoding.Nop,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp852":        charmap.CodePage852,
	"cp858":        charmap.CodePage858,
	"cp866":        charmap.CodePage866,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
}

var charsetAliases = map[string]string{
	"utf8":    "utf-8",
	"":        "utf-8",
	"pc437":   "cp437",
	"pc850":   "cp850",
	"pc852":   "cp852",
	"pc858":   "cp858",
	"latin1":  "iso-8859-1",
	"latin2":  "iso-8859-2",
	"cp1250":  "windows-1250",
	"cp1251":  "windows-1251",
	"cp1252":  "windows-1252",
	"latin-1": "iso-8859-1",
	"latin-2": "iso-8859-2",
}

// LookupCharset returns the encoding registered under name
func LookupCharset(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := charsetAliases[key]; ok {
		key = alias
	}

	enc, ok := charsets[key]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q (known: %s): %w",
			name, strings.Join(CharsetNames(), ", "), ErrConfiguration)
	}
	return enc, nil
}

// CharsetNames lists the supported charsets
func CharsetNames() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// encodeText converts text to the printer code page. Runes the code page
// lacks are replaced rather than failing the whole line.
func encodeText(enc encoding.Encoding, text string) ([]byte, error) {
	if enc == encoding.Nop {
		return []byte(text), nil
	}

	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	return out, nil
}
