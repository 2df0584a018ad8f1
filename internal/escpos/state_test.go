package escpos

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetScaleRoundTrip(t *testing.T) {
	for _, d := range []*Dialect{PortIPC40, A2} {
		t.Run(d.Name, func(t *testing.T) {
			for w := 1; w <= MaxScale; w++ {
				for h := 1; h <= MaxScale; h++ {
					m := NewMachine(d)
					out, err := m.SetScale(w, h)
					if err != nil {
						t.Fatalf("SetScale(%d, %d): %v", w, h, err)
					}
					got, err := d.DecodeScale(out)
					if err != nil {
						t.Fatalf("DecodeScale(%x): %v", out, err)
					}
					want := Scale{Width: w, Height: h}
					if got != want {
						t.Errorf("SetScale(%d, %d) decoded to %+v", w, h, got)
					}
					if m.State().Scale != want {
						t.Errorf("SetScale(%d, %d) state %+v", w, h, m.State().Scale)
					}
				}
			}
		})
	}
}

func TestSetScaleToggleDialect(t *testing.T) {
	tests := []struct {
		w, h int
		want Scale
		op   []byte
	}{
		{1, 1, Scale{1, 1}, []byte{0x00}},
		{2, 1, Scale{2, 1}, []byte{0x01}},
		{1, 5, Scale{1, 2}, []byte{0x02}},
		{8, 8, Scale{2, 2}, []byte{0x03}},
	}

	for _, tt := range tests {
		m := NewMachine(DPT100S)
		out, err := m.SetScale(tt.w, tt.h)
		if err != nil {
			t.Fatalf("SetScale(%d, %d): %v", tt.w, tt.h, err)
		}
		if !bytes.Equal(out, tt.op) {
			t.Errorf("SetScale(%d, %d) = %x, want %x", tt.w, tt.h, out, tt.op)
		}
		got, err := DPT100S.DecodeScale(out)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want || m.State().Scale != tt.want {
			t.Errorf("SetScale(%d, %d) decoded %+v state %+v, want %+v", tt.w, tt.h, got, m.State().Scale, tt.want)
		}
	}
}

func TestSetScaleClampsOutOfRange(t *testing.T) {
	m := NewMachine(PortIPC40)
	out, err := m.SetScale(0, 9)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{GS, 0x21, 0x00}; !bytes.Equal(out, want) {
		t.Errorf("SetScale(0, 9) = %x, want %x", out, want)
	}

	out, err = m.SetScale(-3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{GS, 0x21, 0x20}; !bytes.Equal(out, want) {
		t.Errorf("SetScale(-3, 3) = %x, want %x", out, want)
	}
	if want := (Scale{Width: 1, Height: 3}); m.State().Scale != want {
		t.Errorf("state scale %+v, want %+v", m.State().Scale, want)
	}
}

func TestSetJustificationRejectsUnknown(t *testing.T) {
	for _, j := range []Justification{-1, 3, 42} {
		m := NewMachine(PortIPC40)
		before := m.State()

		out, err := m.SetJustification(j)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetJustification(%d) err = %v, want ErrInvalidArgument", j, err)
		}
		if len(out) != 0 {
			t.Errorf("SetJustification(%d) emitted %x", j, out)
		}
		if diff := cmp.Diff(before, m.State()); diff != "" {
			t.Errorf("state changed (-before +after):\n%s", diff)
		}
	}
}

func TestParseJustification(t *testing.T) {
	tests := map[string]Justification{
		"left":   JustifyLeft,
		"L":      JustifyLeft,
		"center": JustifyCenter,
		"c":      JustifyCenter,
		" Right": JustifyRight,
	}
	for in, want := range tests {
		got, err := ParseJustification(in)
		if err != nil || got != want {
			t.Errorf("ParseJustification(%q) = %v, %v, want %v", in, got, err, want)
		}
	}

	if _, err := ParseJustification("middle"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseJustification(middle) err = %v", err)
	}
}

func TestUnsupportedCommand(t *testing.T) {
	m := NewMachine(DPT100S)

	if _, err := m.SetJustification(JustifyCenter); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("SetJustification err = %v, want ErrUnsupportedCommand", err)
	}
	out, err := m.SetEmphasis(true)
	if !errors.Is(err, ErrUnsupportedCommand) || !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetEmphasis err = %v", err)
	}
	if out != nil {
		t.Errorf("SetEmphasis emitted %x", out)
	}
	if m.State() != DefaultState() {
		t.Errorf("state changed to %+v", m.State())
	}
}

func TestTogglesAreNotElided(t *testing.T) {
	m := NewMachine(PortIPC40)
	want := []byte{ESC, 0x45, 0x01}

	for i := 0; i < 2; i++ {
		out, err := m.SetEmphasis(true)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, want) {
			t.Errorf("call %d: SetEmphasis(true) = %x, want %x", i, out, want)
		}
	}
}

func TestToggleOpcodes(t *testing.T) {
	m := NewMachine(PortIPC40)

	tests := []struct {
		name string
		set  func(bool) ([]byte, error)
		on   []byte
		off  []byte
	}{
		{"underline", m.SetUnderline, []byte{ESC, 0x2D, 0x01}, []byte{ESC, 0x2D, 0x00}},
		{"reverse", m.SetReverse, []byte{GS, 0x42, 0x01}, []byte{GS, 0x42, 0x00}},
		{"upside down", m.SetUpsideDown, []byte{ESC, 0x7B, 0x01}, []byte{ESC, 0x7B, 0x00}},
		{"alt font", m.SetAltFont, []byte{ESC, 0x21, 0x01}, []byte{ESC, 0x21, 0x00}},
	}

	for _, tt := range tests {
		on, err := tt.set(true)
		if err != nil || !bytes.Equal(on, tt.on) {
			t.Errorf("%s on = %x, %v, want %x", tt.name, on, err, tt.on)
		}
		off, err := tt.set(false)
		if err != nil || !bytes.Equal(off, tt.off) {
			t.Errorf("%s off = %x, %v, want %x", tt.name, off, err, tt.off)
		}
	}
}

func TestResetRestoresDefaultState(t *testing.T) {
	for _, name := range DialectNames() {
		d, err := LookupDialect(name)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			m := NewMachine(d)
			// Unsupported attributes fail; whatever is supported gets changed.
			m.SetJustification(JustifyRight)
			m.SetEmphasis(true)
			m.SetUnderline(true)
			m.SetReverse(true)
			m.SetUpsideDown(true)
			m.SetAltFont(true)
			m.SetScale(2, 2)

			out := m.Reset()
			if !bytes.HasPrefix(out, d.Init) {
				t.Errorf("Reset() = %x, want prefix %x", out, d.Init)
			}
			if diff := cmp.Diff(DefaultState(), m.State()); diff != "" {
				t.Errorf("state after reset (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResetSequence(t *testing.T) {
	m := NewMachine(PortIPC40)
	want := []byte{
		ESC, ESC, 0x40,
		GS, 0x21, 0x00,
		ESC, 0x7B, 0x00,
		ESC, 0x2D, 0x00,
		GS, 0x42, 0x00,
		ESC, 0x61, 0x00,
		ESC, 0x21, 0x00,
		ESC, 0x45, 0x00,
	}
	if diff := cmp.Diff(want, m.Reset()); diff != "" {
		t.Errorf("Reset() (-want +got):\n%s", diff)
	}

	want = []byte{ESC, 0x40, 0x00, ESC, 0x71, ESC, 0x4E}
	if diff := cmp.Diff(want, NewMachine(DPT100S).Reset()); diff != "" {
		t.Errorf("dpt100s Reset() (-want +got):\n%s", diff)
	}
}

func TestInitKeepsState(t *testing.T) {
	m := NewMachine(PortIPC40)
	m.SetEmphasis(true)

	if diff := cmp.Diff([]byte{ESC, ESC, 0x40}, m.Init()); diff != "" {
		t.Errorf("Init() (-want +got):\n%s", diff)
	}
	if !m.State().Emphasis {
		t.Error("Init changed the logical state")
	}
}

func TestNormalOmitsInit(t *testing.T) {
	m := NewMachine(PortIPC40)
	m.SetUnderline(true)

	out := m.Normal()
	if bytes.HasPrefix(out, PortIPC40.Init) {
		t.Errorf("Normal() = %x starts with init", out)
	}
	if m.State() != DefaultState() {
		t.Errorf("state after Normal() = %+v", m.State())
	}
}

func TestLineFeed(t *testing.T) {
	tests := []struct {
		dialect *Dialect
		count   int
		want    []byte
	}{
		{A2, 1, []byte{LF}},
		{A2, 3, []byte{LF, LF, LF}},
		{A2, 0, []byte{LF}},
		{DPT100S, 2, []byte{LF, LF}},
		{PortIPC40, 1, []byte(" \n")},
		{PortIPC40, 2, []byte(" \n \n")},
	}

	for _, tt := range tests {
		got := NewMachine(tt.dialect).LineFeed(tt.count)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s LineFeed(%d) = %q, want %q", tt.dialect, tt.count, got, tt.want)
		}
	}
}

func TestLookupDialect(t *testing.T) {
	d, err := LookupDialect(" PortIPC40 ")
	if err != nil || d != PortIPC40 {
		t.Errorf("LookupDialect = %v, %v", d, err)
	}
	if _, err := LookupDialect("tm-t88"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("LookupDialect(unknown) err = %v", err)
	}
	if diff := cmp.Diff([]string{"a2", "dpt100s", "portipc40"}, DialectNames()); diff != "" {
		t.Errorf("DialectNames (-want +got):\n%s", diff)
	}
}
