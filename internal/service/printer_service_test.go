package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"printer-service/internal/config"
	"printer-service/internal/driver"
	"printer-service/internal/escpos"
	"printer-service/internal/model"
	"printer-service/internal/protocol"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.PrinterEvent
}

func (p *recordingPublisher) Publish(event model.PrinterEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

func testConfig() *config.PrinterConfig {
	return &config.PrinterConfig{
		Brand:             "PORTIPC",
		Model:             "PORTIPC-40",
		ConnectionType:    "memory",
		Charset:           "utf-8",
		BlackThreshold:    escpos.DefaultBlackThreshold,
		AlphaThreshold:    escpos.DefaultAlphaThreshold,
		DisableDelays:     true,
		ReconnectAttempts: 2,
	}
}

func newTestService(t *testing.T, cfg *config.PrinterConfig) (*PrinterService, *protocol.MemoryConnection, *recordingPublisher) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)

	conn := protocol.NewMemoryConnection("test", logger)
	pub := &recordingPublisher{}

	ps, err := NewPrinterService(cfg, registry, pub, logger, WithConnector(func() (protocol.PrinterProtocol, error) {
		return conn, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := ps.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ps.Close() })

	conn.Clear()
	return ps, conn, pub
}

// unopenableConnection is a device that is missing or refuses connections
type unopenableConnection struct {
	*protocol.MemoryConnection
	opens int
}

func (c *unopenableConnection) Open(context.Context) error {
	c.opens++
	return errors.New("open /dev/ttyUSB0: no such file or directory")
}

func boolPtr(b bool) *bool       { return &b }
func intPtr(i int) *int          { return &i }
func stringPtr(s string) *string { return &s }

func TestConnectResetsPrinter(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)
	conn := protocol.NewMemoryConnection("test", logger)
	pub := &recordingPublisher{}

	ps, err := NewPrinterService(testConfig(), registry, pub, logger, WithConnector(func() (protocol.PrinterProtocol, error) {
		return conn, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if ps.Ready() {
		t.Fatal("ready before connect")
	}
	if err := ps.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x1B, 0x1B, 0x40,
		0x1D, 0x21, 0x00,
		0x1B, 0x7B, 0x00,
		0x1B, 0x2D, 0x00,
		0x1D, 0x42, 0x00,
		0x1B, 0x61, 0x00,
		0x1B, 0x21, 0x00,
		0x1B, 0x45, 0x00,
	}
	if diff := cmp.Diff(want, conn.Bytes()); diff != "" {
		t.Errorf("reset bytes (-want +got):\n%s", diff)
	}

	info := ps.Info()
	if !info.IsOnline() || info.Dialect != "portipc40" || info.Address != "test" {
		t.Errorf("info = %+v", info)
	}
	if info.ColumnsPerLine != driver.DefaultColumns {
		t.Errorf("columns = %d, want %d", info.ColumnsPerLine, driver.DefaultColumns)
	}
	if diff := cmp.Diff([]model.EventType{model.EventPrinterConnected}, pub.types()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestNewPrinterServiceErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)

	tests := []struct {
		name   string
		modify func(*config.PrinterConfig)
	}{
		{"unknown model", func(c *config.PrinterConfig) { c.Brand, c.Model = "ACME", "X1" }},
		{"unknown dialect", func(c *config.PrinterConfig) { c.Dialect = "zebra" }},
		{"unknown charset", func(c *config.PrinterConfig) { c.Charset = "klingon" }},
		{"unknown connection", func(c *config.PrinterConfig) { c.ConnectionType = "bluetooth" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			_, err := NewPrinterService(cfg, registry, nil, logger)
			if !errors.Is(err, driver.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestDialectOverride(t *testing.T) {
	cfg := testConfig()
	cfg.Dialect = "a2"
	ps, _, _ := newTestService(t, cfg)

	if got := ps.Info().Dialect; got != "a2" {
		t.Errorf("dialect = %q, want a2", got)
	}
}

func TestSerialBaudFollowsModel(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)

	cfg := testConfig()
	cfg.Brand, cfg.Model = "CUSTOM", "DPT100-S"
	ps, err := NewPrinterService(cfg, registry, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	if ps.cfg.Serial.BaudRate != 19200 {
		t.Errorf("baud = %d, want 19200", ps.cfg.Serial.BaudRate)
	}

	cfg.Serial.BaudRate = 9600
	ps, err = NewPrinterService(cfg, registry, nil, logger)
	if err != nil {
		t.Fatal(err)
	}
	if ps.cfg.Serial.BaudRate != 9600 {
		t.Errorf("configured baud overridden: %d", ps.cfg.Serial.BaudRate)
	}
}

func TestFormat(t *testing.T) {
	ps, conn, pub := newTestService(t, testConfig())

	op, err := ps.Format(context.Background(), &model.FormatRequest{
		Justification: stringPtr("center"),
		Emphasis:      boolPtr(true),
		Height:        intPtr(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if op.Status != model.OperationStatusSuccess {
		t.Errorf("status = %s", op.Status)
	}

	want := [][]byte{
		{0x1B, 0x61, 0x01},
		{0x1B, 0x45, 0x01},
		{0x1D, 0x21, 0x10},
	}
	if diff := cmp.Diff(want, conn.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}

	state := ps.Info().State
	if state.Justification != escpos.JustifyCenter || !state.Emphasis || state.Scale != (escpos.Scale{Width: 1, Height: 2}) {
		t.Errorf("state = %+v", state)
	}

	types := pub.types()
	if diff := cmp.Diff([]model.EventType{model.EventOperationStarted, model.EventOperationCompleted}, types[len(types)-2:]); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestFormatInvalidWritesNothing(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	_, err := ps.Format(context.Background(), &model.FormatRequest{
		Emphasis:      boolPtr(true),
		Justification: stringPtr("diagonal"),
	})
	if !errors.Is(err, escpos.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if n := len(conn.Writes()); n != 0 {
		t.Errorf("%d writes after invalid request", n)
	}
}

func TestFormatUnsupported(t *testing.T) {
	cfg := testConfig()
	cfg.Brand, cfg.Model = "CUSTOM", "DPT100-S"
	ps, conn, _ := newTestService(t, cfg)

	op, err := ps.Format(context.Background(), &model.FormatRequest{Emphasis: boolPtr(true)})
	if !errors.Is(err, escpos.ErrUnsupportedCommand) {
		t.Fatalf("err = %v, want ErrUnsupportedCommand", err)
	}
	if op.Status != model.OperationStatusFailed || op.ErrorMessage == nil {
		t.Errorf("operation = %+v", op)
	}
	if len(conn.Writes()) != 0 {
		t.Error("unsupported command wrote bytes")
	}
	if !ps.Ready() {
		t.Error("unsupported command dropped the session")
	}
}

func TestFormatPartlyUnsupportedWritesNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Brand, cfg.Model = "CUSTOM", "DPT100-S"
	ps, conn, _ := newTestService(t, cfg)
	ctx := context.Background()

	// dpt100s underlines but has no emphasis or justification
	req := &model.FormatRequest{
		Underline:     boolPtr(true),
		Emphasis:      boolPtr(true),
		Justification: stringPtr("center"),
	}
	op, err := ps.Format(ctx, req)
	if !errors.Is(err, escpos.ErrUnsupportedCommand) {
		t.Fatalf("err = %v, want ErrUnsupportedCommand", err)
	}
	for _, name := range []string{"EMPHASIS", "JUSTIFY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("err %q does not name %s", err, name)
		}
	}
	if strings.Contains(err.Error(), "UNDERLINE") {
		t.Errorf("err %q names a supported attribute", err)
	}
	if op.Status != model.OperationStatusFailed {
		t.Errorf("status = %s", op.Status)
	}

	if _, err := ps.Text(ctx, &model.TextRequest{Text: "hidden", Format: req}); !errors.Is(err, escpos.ErrUnsupportedCommand) {
		t.Errorf("text err = %v", err)
	}

	if n := len(conn.Writes()); n != 0 {
		t.Errorf("%d writes for a rejected request", n)
	}
	if ps.Info().State.Underline {
		t.Error("underline state committed for a rejected request")
	}
}

func TestText(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())
	ctx := WithCorrelationID(context.Background(), "req-1")

	op, err := ps.Text(ctx, &model.TextRequest{Text: "ABCDEFG", Columns: intPtr(3)})
	if err != nil {
		t.Fatal(err)
	}
	if op.CorrelationID == nil || *op.CorrelationID != "req-1" {
		t.Errorf("correlation id = %v", op.CorrelationID)
	}
	if got := string(conn.Bytes()); got != "ABC\nDEF\nG\n" {
		t.Errorf("text = %q", got)
	}

	conn.Clear()
	if _, err := ps.Text(context.Background(), &model.TextRequest{Text: "ABCDEFG\n", Columns: intPtr(3), Raw: true}); err != nil {
		t.Fatal(err)
	}
	if got := string(conn.Bytes()); got != "ABCDEFG\n" {
		t.Errorf("raw text = %q", got)
	}
}

func TestTextWithFormat(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	_, err := ps.Text(context.Background(), &model.TextRequest{
		Text:   "OK",
		Format: &model.FormatRequest{Underline: boolPtr(true)},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := [][]byte{{0x1B, 0x2D, 0x01}, []byte("OK\n")}
	if diff := cmp.Diff(want, conn.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestFeed(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	if _, err := ps.Feed(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if got := string(conn.Bytes()); got != " \n \n" {
		t.Errorf("feed = %q", got)
	}
}

func TestOpenFailureIsConfigurationError(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)
	conn := &unopenableConnection{MemoryConnection: protocol.NewMemoryConnection("test", logger)}
	pub := &recordingPublisher{}

	cfg := testConfig()
	cfg.ReconnectAttempts = 3
	ps, err := NewPrinterService(cfg, registry, pub, logger, WithConnector(func() (protocol.PrinterProtocol, error) {
		return conn, nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	err = ps.Connect(context.Background())
	if !errors.Is(err, driver.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if errors.Is(err, driver.ErrTransport) {
		t.Errorf("open failure classified as transport error: %v", err)
	}
	if conn.opens != 1 {
		t.Errorf("open attempted %d times, want 1", conn.opens)
	}
	if ps.Ready() {
		t.Error("ready after failed open")
	}
	if info := ps.Info(); info.Status != model.PrinterStatusError {
		t.Errorf("status = %s", info.Status)
	}
}

func TestTransportFailureReconnects(t *testing.T) {
	ps, conn, pub := newTestService(t, testConfig())
	ctx := context.Background()

	conn.FailAfter(0, errors.New("cable unplugged"))
	op, err := ps.Feed(ctx, 1)
	if !errors.Is(err, driver.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if op.Status != model.OperationStatusFailed {
		t.Errorf("status = %s", op.Status)
	}

	info := ps.Info()
	if info.Status != model.PrinterStatusError || info.LastError == nil {
		t.Errorf("info after failure = %+v", info)
	}
	if ps.Ready() {
		t.Error("session kept after transport failure")
	}
	if conn.CloseCount() != 1 {
		t.Errorf("close count = %d, want 1", conn.CloseCount())
	}

	conn.FailAfter(-1, nil)
	conn.Clear()
	if _, err := ps.Feed(ctx, 1); err != nil {
		t.Fatal(err)
	}

	writes := conn.Writes()
	if len(writes) != 3 {
		t.Fatalf("got %d writes, want init, defaults and feed", len(writes))
	}
	if !bytes.Equal(writes[0], []byte{0x1B, 0x1B, 0x40}) {
		t.Errorf("first write after reconnect = % x, want reset", writes[0])
	}
	if info := ps.Info(); !info.IsOnline() {
		t.Error("not online after reconnect")
	}

	types := pub.types()
	for _, want := range []model.EventType{model.EventPrinterDisconnected, model.EventPrinterError} {
		found := false
		for _, got := range types {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("no %s event in %v", want, types)
		}
	}
}

func TestConnectRetries(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)

	calls := 0
	ps, err := NewPrinterService(testConfig(), registry, nil, logger, WithConnector(func() (protocol.PrinterProtocol, error) {
		calls++
		conn := protocol.NewMemoryConnection("retry", logger)
		if calls == 1 {
			conn.FailAfter(0, errors.New("busy"))
		}
		return conn, nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	if err := ps.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("connector called %d times, want 2", calls)
	}
}

func TestConnectGivesUp(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultModels(registry, logger)

	calls := 0
	ps, err := NewPrinterService(testConfig(), registry, nil, logger, WithConnector(func() (protocol.PrinterProtocol, error) {
		calls++
		conn := protocol.NewMemoryConnection("dead", logger)
		conn.FailAfter(0, errors.New("no answer"))
		return conn, nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	err = ps.Connect(context.Background())
	if !errors.Is(err, driver.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if calls != 2 {
		t.Errorf("connector called %d times, want 2", calls)
	}
	if ps.Info().Status != model.PrinterStatusError {
		t.Errorf("status = %s", ps.Info().Status)
	}
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrintImage(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	data := solidPNG(t, 8, 2, color.Black)
	if _, err := ps.PrintImage(context.Background(), bytes.NewReader(data), false); err != nil {
		t.Fatal(err)
	}

	writes := conn.Writes()
	if len(writes) != 3 {
		t.Fatalf("got %d writes, want header + 2 rows", len(writes))
	}
	if diff := cmp.Diff([]byte{escpos.DC2, 0x2A, 2, escpos.RowBytes}, writes[0]); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	if writes[1][0] != escpos.ESC || writes[1][2] != 0x00 || writes[1][3] != 0xFF {
		t.Errorf("first row = % x", writes[1][:4])
	}
}

func TestPrintImageTooWide(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())
	data := solidPNG(t, escpos.PrintHeadWidth+16, 1, color.Black)

	_, err := ps.PrintImage(context.Background(), bytes.NewReader(data), false)
	if !errors.Is(err, escpos.ErrImageTooWide) {
		t.Fatalf("err = %v, want ErrImageTooWide", err)
	}
	if len(conn.Writes()) != 0 {
		t.Error("too wide image wrote bytes")
	}

	if _, err := ps.PrintImage(context.Background(), bytes.NewReader(data), true); err != nil {
		t.Fatalf("fit: %v", err)
	}
}

func TestPreview(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	var out bytes.Buffer
	if err := ps.Preview(bytes.NewReader(solidPNG(t, 4, 3, color.Black)), false, &out); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != escpos.PrintHeadWidth || b.Dy() != 3 {
		t.Errorf("preview bounds = %v", b)
	}
	if len(conn.Writes()) != 0 {
		t.Error("preview wrote to the printer")
	}
}

func TestLogoAndFactoryReset(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())
	ctx := context.Background()

	if _, err := ps.PrintLogo(ctx); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x1B, 0xFA, 0x01, 0x55}, conn.Bytes()); diff != "" {
		t.Errorf("logo (-want +got):\n%s", diff)
	}

	if _, err := ps.FactoryReset(ctx); !errors.Is(err, escpos.ErrUnsupportedCommand) {
		t.Errorf("factory reset on portipc40: err = %v", err)
	}
}

func TestSelfTest(t *testing.T) {
	for _, m := range []struct{ brand, model string }{
		{"PORTIPC", "PORTIPC-40"},
		{"CUSTOM", "DPT100-S"},
		{"ADAFRUIT", "A2"},
	} {
		t.Run(m.model, func(t *testing.T) {
			cfg := testConfig()
			cfg.Brand, cfg.Model = m.brand, m.model
			ps, conn, _ := newTestService(t, cfg)

			if _, err := ps.SelfTest(context.Background()); err != nil {
				t.Fatal(err)
			}

			out := string(conn.Bytes())
			for _, want := range []string{"SELF TEST", "Underline", "Double size", "12345678901234567890123456789012"} {
				if !strings.Contains(out, want) {
					t.Errorf("self test output lacks %q", want)
				}
			}
			if ps.Info().State != escpos.DefaultState() {
				t.Errorf("state after self test = %+v", ps.Info().State)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	ps, conn, _ := newTestService(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ps.Feed(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(conn.Writes()) != 0 {
		t.Error("cancelled operation wrote bytes")
	}
}

func TestRuler(t *testing.T) {
	if got := ruler(12); got != "123456789012" {
		t.Errorf("ruler(12) = %q", got)
	}
}
