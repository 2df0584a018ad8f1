// internal/escpos/state.go
package escpos

import (
	"bytes"
	"fmt"
	"strings"
)

// Justification is the horizontal text alignment
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight

	justificationCount = 3
)

func (j Justification) String() string {
	switch j {
	case JustifyLeft:
		return "left"
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	default:
		return fmt.Sprintf("Justification(%d)", int(j))
	}
}

func (j Justification) valid() bool {
	return j >= JustifyLeft && j < justificationCount
}

// ParseJustification accepts left/center/right and their first letters
func ParseJustification(s string) (Justification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return JustifyLeft, nil
	case "center", "centre", "c":
		return JustifyCenter, nil
	case "right", "r":
		return JustifyRight, nil
	default:
		return 0, fmt.Errorf("justification %q: %w", s, ErrInvalidArgument)
	}
}

// MaxScale is the largest character multiplier the protocol can express
const MaxScale = 8

// Scale is the character width and height multiplier
type Scale struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func clampScale(v int) int {
	if v < 1 || v > MaxScale {
		return 1
	}
	return v
}

// FormattingState is the text rendering mode the printer is assumed to be in
type FormattingState struct {
	Justification Justification `json:"justification"`
	Emphasis      bool          `json:"emphasis"`
	Underline     bool          `json:"underline"`
	Reverse       bool          `json:"reverse"`
	UpsideDown    bool          `json:"upside_down"`
	Scale         Scale         `json:"scale"`
	AltFont       bool          `json:"alt_font"`
}

// DefaultState is the state after a reset
func DefaultState() FormattingState {
	return FormattingState{
		Justification: JustifyLeft,
		Scale:         Scale{Width: 1, Height: 1},
	}
}

// Machine turns formatting requests into opcodes for one dialect and tracks
// the resulting FormattingState. Every method either returns the complete
// byte sequence and commits the new state, or returns an error and changes
// nothing. Opcodes are never elided: the printer cannot confirm its state, so
// repeating a request repeats the command.
//
// A Machine is not safe for concurrent use.
type Machine struct {
	dialect *Dialect
	state   FormattingState
}

// NewMachine creates a machine in the default state
func NewMachine(dialect *Dialect) *Machine {
	return &Machine{
		dialect: dialect,
		state:   DefaultState(),
	}
}

// Dialect returns the dialect the machine emits
func (m *Machine) Dialect() *Dialect {
	return m.dialect
}

// State returns the current logical state
func (m *Machine) State() FormattingState {
	return m.state
}

// Reset emits the init command followed by the default of every attribute
// the dialect can drive, so the printer ends up in DefaultState whatever it
// was in before. Writers that must let the printer settle after init send
// Init and Normal separately instead.
func (m *Machine) Reset() []byte {
	var buf bytes.Buffer
	buf.Write(m.Init())
	buf.Write(m.Normal())
	return buf.Bytes()
}

// Init returns the bare init command. It does not change the logical state;
// Normal must follow once the printer is ready.
func (m *Machine) Init() []byte {
	return clone(m.dialect.Init)
}

// Normal restores the default formatting without re-initialising the printer
func (m *Machine) Normal() []byte {
	out := m.defaults()
	m.state = DefaultState()
	return out
}

func (m *Machine) defaults() []byte {
	d := m.dialect
	var buf bytes.Buffer

	if d.Scale.Mode != ScaleUnsupported {
		op, _, _ := d.Scale.Encode(1, 1)
		buf.Write(op)
	}
	for _, t := range []Toggle{d.UpsideDown, d.Underline, d.Reverse} {
		if t.Supported() {
			buf.Write(t.Off)
		}
	}
	if d.SupportsJustification() {
		buf.Write(d.Justification[JustifyLeft])
	}
	for _, t := range []Toggle{d.AltFont, d.Emphasis} {
		if t.Supported() {
			buf.Write(t.Off)
		}
	}
	return buf.Bytes()
}

// SetJustification selects left, center or right alignment
func (m *Machine) SetJustification(j Justification) ([]byte, error) {
	if !j.valid() {
		return nil, fmt.Errorf("set justification %d: %w", int(j), ErrInvalidArgument)
	}
	if !m.dialect.SupportsJustification() {
		return nil, fmt.Errorf("set justification on %s: %w", m.dialect.Name, ErrUnsupportedCommand)
	}

	m.state.Justification = j
	return clone(m.dialect.Justification[j]), nil
}

// SetEmphasis switches bold printing
func (m *Machine) SetEmphasis(on bool) ([]byte, error) {
	return m.toggle("emphasis", m.dialect.Emphasis, on, &m.state.Emphasis)
}

// SetUnderline switches underlining
func (m *Machine) SetUnderline(on bool) ([]byte, error) {
	return m.toggle("underline", m.dialect.Underline, on, &m.state.Underline)
}

// SetReverse switches white-on-black printing
func (m *Machine) SetReverse(on bool) ([]byte, error) {
	return m.toggle("reverse", m.dialect.Reverse, on, &m.state.Reverse)
}

// SetUpsideDown switches 180 degree rotated printing
func (m *Machine) SetUpsideDown(on bool) ([]byte, error) {
	return m.toggle("upside down", m.dialect.UpsideDown, on, &m.state.UpsideDown)
}

// SetAltFont switches to the alternate (smaller) font
func (m *Machine) SetAltFont(on bool) ([]byte, error) {
	return m.toggle("alt font", m.dialect.AltFont, on, &m.state.AltFont)
}

func (m *Machine) toggle(name string, t Toggle, on bool, field *bool) ([]byte, error) {
	if !t.Supported() {
		return nil, fmt.Errorf("set %s on %s: %w", name, m.dialect.Name, ErrUnsupportedCommand)
	}

	*field = on
	return clone(t.opcode(on)), nil
}

// SetScale sets the character multiplier. Out of range values are clamped to
// 1 rather than rejected.
func (m *Machine) SetScale(width, height int) ([]byte, error) {
	op, effective, err := m.dialect.Scale.Encode(width, height)
	if err != nil {
		return nil, fmt.Errorf("set scale on %s: %w", m.dialect.Name, err)
	}

	m.state.Scale = effective
	return clone(op), nil
}

// LineFeed advances count lines; count below 1 is treated as 1
func (m *Machine) LineFeed(count int) []byte {
	if count < 1 {
		count = 1
	}

	unit := m.dialect.LineFeed
	if m.dialect.SynthesizeLineFeed {
		unit = m.dialect.BlankLine
	}
	return bytes.Repeat(unit, count)
}

func clone(op Opcode) []byte {
	return append([]byte(nil), op...)
}
