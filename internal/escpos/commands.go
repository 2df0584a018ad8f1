// internal/escpos/commands.go
package escpos

import "time"

// Control characters
const (
	LF  = 0x0A
	DC2 = 0x12
	ESC = 0x1B
	GS  = 0x1D
)

// DPT100S is the Custom DPT100-S command set. It has no justification,
// emphasis, upside-down or alternate font commands, and scale is a single
// toggle byte.
var DPT100S = register(&Dialect{
	Name:        "dpt100s",
	Description: "Custom DPT100-S",
	BaudRate:    19200,

	Init: Opcode{ESC, 0x40}, // ESC @

	Underline: Toggle{
		On:  Opcode{ESC, 0x51}, // ESC Q
		Off: Opcode{ESC, 0x71}, // ESC q
	},
	Reverse: Toggle{
		On:  Opcode{ESC, 0x52}, // ESC R
		Off: Opcode{ESC, 0x4E}, // ESC N
	},
	Scale: ScaleEncoding{
		Mode:         ScaleToggles,
		Normal:       Opcode{0x00},
		DoubleWidth:  Opcode{0x01},
		DoubleHeight: Opcode{0x02},
		DoubleBoth:   Opcode{0x03},
	},

	LineFeed: Opcode{LF},

	Separator:    Opcode{ESC, 0x57},  // ESC W, followed by one 48 byte row
	RasterMarker: [2]byte{DC2, 0x2A}, // DC2 *

	Logo:         Opcode{ESC, 0xFA, 0x01, 0x55},
	FactoryReset: Opcode{GS, 0x55}, // GS U

	Delays: DelayPolicy{
		Reset: 2 * time.Second,
		Text:  200 * time.Millisecond,
	},
})

// PortIPC40 is the PortIPC-40 command set. Its native line feed is
// unreliable, so line feeds are printed as blank lines.
var PortIPC40 = register(&Dialect{
	Name:        "portipc40",
	Description: "PortIPC-40",
	BaudRate:    9600,

	Init: Opcode{ESC, ESC, 0x40}, // ESC ESC @

	Justification: [justificationCount]Opcode{
		JustifyLeft:   {ESC, 0x61, 0x00}, // ESC a 0
		JustifyCenter: {ESC, 0x61, 0x01}, // ESC a 1
		JustifyRight:  {ESC, 0x61, 0x02}, // ESC a 2
	},
	Emphasis: Toggle{
		On:  Opcode{ESC, 0x45, 0x01}, // ESC E 1
		Off: Opcode{ESC, 0x45, 0x00}, // ESC E 0
	},
	Underline: Toggle{
		On:  Opcode{ESC, 0x2D, 0x01}, // ESC - 1
		Off: Opcode{ESC, 0x2D, 0x00}, // ESC - 0
	},
	Reverse: Toggle{
		On:  Opcode{GS, 0x42, 0x01}, // GS B 1
		Off: Opcode{GS, 0x42, 0x00}, // GS B 0
	},
	UpsideDown: Toggle{
		On:  Opcode{ESC, 0x7B, 0x01}, // ESC { 1
		Off: Opcode{ESC, 0x7B, 0x00}, // ESC { 0
	},
	AltFont: Toggle{
		On:  Opcode{ESC, 0x21, 0x01}, // ESC ! 1
		Off: Opcode{ESC, 0x21, 0x00}, // ESC ! 0
	},
	Scale: ScaleEncoding{
		Mode:        ScaleCombined,
		Prefix:      Opcode{GS, 0x21}, // GS ! n
		WidthShift:  0,
		HeightShift: 4,
	},

	LineFeed:           Opcode{ESC, 0x4A}, // ESC J
	SynthesizeLineFeed: true,
	BlankLine:          Opcode(" \n"),

	Separator:    Opcode{ESC, 0x57},
	RasterMarker: [2]byte{DC2, 0x2A},

	Logo: Opcode{ESC, 0xFA, 0x01, 0x55},

	Delays: DelayPolicy{
		Reset: 2 * time.Second,
		Text:  200 * time.Millisecond,
	},
})

// A2 is the ESC/POS subset of the common 58mm "A2" panel printers. Scale
// uses the standard GS ! nibble order and rows need no separator.
var A2 = register(&Dialect{
	Name:        "a2",
	Description: "A2 58mm panel printer (ESC/POS subset)",
	BaudRate:    19200,

	Init: Opcode{ESC, 0x40}, // ESC @

	Justification: [justificationCount]Opcode{
		JustifyLeft:   {ESC, 0x61, 0x00},
		JustifyCenter: {ESC, 0x61, 0x01},
		JustifyRight:  {ESC, 0x61, 0x02},
	},
	Emphasis: Toggle{
		On:  Opcode{ESC, 0x45, 0x01},
		Off: Opcode{ESC, 0x45, 0x00},
	},
	Underline: Toggle{
		On:  Opcode{ESC, 0x2D, 0x01},
		Off: Opcode{ESC, 0x2D, 0x00},
	},
	Reverse: Toggle{
		On:  Opcode{GS, 0x42, 0x01},
		Off: Opcode{GS, 0x42, 0x00},
	},
	UpsideDown: Toggle{
		On:  Opcode{ESC, 0x7B, 0x01},
		Off: Opcode{ESC, 0x7B, 0x00},
	},
	AltFont: Toggle{
		On:  Opcode{ESC, 0x21, 0x01},
		Off: Opcode{ESC, 0x21, 0x00},
	},
	Scale: ScaleEncoding{
		Mode:        ScaleCombined,
		Prefix:      Opcode{GS, 0x21},
		WidthShift:  4,
		HeightShift: 0,
	},

	LineFeed: Opcode{LF},

	RasterMarker: [2]byte{DC2, 0x2A},

	Delays: DelayPolicy{
		Reset: 2 * time.Second,
		Text:  300 * time.Millisecond,
	},
})
