// internal/escpos/dialect.go
package escpos

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Opcode is a concrete byte sequence sent to the printer. A nil Opcode means
// the firmware has no such command.
type Opcode []byte

// Toggle holds the on and off opcodes of a boolean formatting attribute
type Toggle struct {
	On  Opcode
	Off Opcode
}

// Supported reports whether the dialect can drive the attribute both ways
func (t Toggle) Supported() bool {
	return t.On != nil && t.Off != nil
}

func (t Toggle) opcode(on bool) Opcode {
	if on {
		return t.On
	}
	return t.Off
}

// ScaleMode selects how a dialect expresses character scale
type ScaleMode int

const (
	ScaleUnsupported ScaleMode = iota
	// ScaleToggles uses one fixed code per normal/double-width/double-height/both.
	ScaleToggles
	// ScaleCombined packs width and height into one parameter byte.
	ScaleCombined
)

// ScaleEncoding describes the scale command of a dialect
type ScaleEncoding struct {
	Mode ScaleMode

	// Combined mode: Prefix followed by ((w-1)<<WidthShift | (h-1)<<HeightShift).
	Prefix      Opcode
	WidthShift  uint
	HeightShift uint

	// Toggle mode
	Normal       Opcode
	DoubleWidth  Opcode
	DoubleHeight Opcode
	DoubleBoth   Opcode
}

// Encode returns the opcode for the requested scale and the scale the printer
// will actually use. Values outside [1,MaxScale] are clamped to 1.
func (e ScaleEncoding) Encode(width, height int) (Opcode, Scale, error) {
	width, height = clampScale(width), clampScale(height)

	switch e.Mode {
	case ScaleCombined:
		n := byte(width-1)<<e.WidthShift | byte(height-1)<<e.HeightShift
		return concat(e.Prefix, Opcode{n}), Scale{Width: width, Height: height}, nil

	case ScaleToggles:
		effective := Scale{Width: 1, Height: 1}
		if width > 1 {
			effective.Width = 2
		}
		if height > 1 {
			effective.Height = 2
		}
		switch {
		case effective.Width == 2 && effective.Height == 2:
			return e.DoubleBoth, effective, nil
		case effective.Width == 2:
			return e.DoubleWidth, effective, nil
		case effective.Height == 2:
			return e.DoubleHeight, effective, nil
		default:
			return e.Normal, effective, nil
		}

	default:
		return nil, Scale{}, fmt.Errorf("set scale: %w", ErrUnsupportedCommand)
	}
}

// Decode inverts Encode
func (e ScaleEncoding) Decode(b []byte) (Scale, error) {
	switch e.Mode {
	case ScaleCombined:
		if len(b) != len(e.Prefix)+1 || !bytes.HasPrefix(b, e.Prefix) {
			return Scale{}, fmt.Errorf("decode scale %x: %w", b, ErrInvalidArgument)
		}
		n := b[len(b)-1]
		return Scale{
			Width:  int(n>>e.WidthShift&0x0F) + 1,
			Height: int(n>>e.HeightShift&0x0F) + 1,
		}, nil

	case ScaleToggles:
		switch {
		case bytes.Equal(b, e.Normal):
			return Scale{Width: 1, Height: 1}, nil
		case bytes.Equal(b, e.DoubleWidth):
			return Scale{Width: 2, Height: 1}, nil
		case bytes.Equal(b, e.DoubleHeight):
			return Scale{Width: 1, Height: 2}, nil
		case bytes.Equal(b, e.DoubleBoth):
			return Scale{Width: 2, Height: 2}, nil
		}
		return Scale{}, fmt.Errorf("decode scale %x: %w", b, ErrInvalidArgument)

	default:
		return Scale{}, fmt.Errorf("decode scale: %w", ErrUnsupportedCommand)
	}
}

// DelayClass names the kind of write a settle delay applies to
type DelayClass int

const (
	DelayCommand DelayClass = iota
	DelayText
	DelayReset
	DelayRasterRow
)

// DelayPolicy is the settle time a dialect needs after each class of write
type DelayPolicy struct {
	Reset     time.Duration `json:"reset"`
	Text      time.Duration `json:"text"`
	Command   time.Duration `json:"command"`
	RasterRow time.Duration `json:"raster_row"`
}

// For returns the delay for the given class
func (p DelayPolicy) For(class DelayClass) time.Duration {
	switch class {
	case DelayReset:
		return p.Reset
	case DelayText:
		return p.Text
	case DelayRasterRow:
		return p.RasterRow
	default:
		return p.Command
	}
}

// Dialect maps the abstract printer operations onto the opcodes of one
// firmware. Dialects are immutable once registered.
type Dialect struct {
	Name        string
	Description string
	BaudRate    int

	Init          Opcode
	Justification [justificationCount]Opcode
	Emphasis      Toggle
	Underline     Toggle
	Reverse       Toggle
	UpsideDown    Toggle
	AltFont       Toggle
	Scale         ScaleEncoding

	// LineFeed is the native line feed. When SynthesizeLineFeed is set the
	// native byte is not trusted and BlankLine is printed instead.
	LineFeed           Opcode
	SynthesizeLineFeed bool
	BlankLine          Opcode

	Separator    Opcode
	RasterMarker [2]byte

	Logo         Opcode
	FactoryReset Opcode

	Delays DelayPolicy
}

// SupportsJustification reports whether every alignment has an opcode
func (d *Dialect) SupportsJustification() bool {
	for _, op := range d.Justification {
		if op == nil {
			return false
		}
	}
	return true
}

// DecodeScale inverts the scale command of this dialect
func (d *Dialect) DecodeScale(b []byte) (Scale, error) {
	return d.Scale.Decode(b)
}

func (d *Dialect) String() string {
	return d.Name
}

var dialects = map[string]*Dialect{}

func register(d *Dialect) *Dialect {
	dialects[d.Name] = d
	return d
}

// LookupDialect returns the dialect registered under name (case insensitive)
func LookupDialect(name string) (*Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (known: %s): %w",
			name, strings.Join(DialectNames(), ", "), ErrInvalidArgument)
	}
	return d, nil
}

// DialectNames lists the registered dialects in sorted order
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func concat(parts ...Opcode) Opcode {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make(Opcode, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
