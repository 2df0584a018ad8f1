package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial"
	"go.uber.org/zap/zaptest"

	"printer-service/internal/model"
)

type fakePort struct {
	serial.Port

	mode    *serial.Mode
	chunk   int
	err     error
	buf     bytes.Buffer
	drained int
	closed  int
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n := len(b)
	if p.chunk > 0 && n > p.chunk {
		n = p.chunk
	}
	p.buf.Write(b[:n])
	return n, nil
}

func (p *fakePort) Drain() error {
	p.drained++
	return nil
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

func withFakePort(t *testing.T, port *fakePort) {
	t.Helper()
	orig := openSerialPort
	openSerialPort = func(name string, mode *serial.Mode) (serial.Port, error) {
		port.mode = mode
		return port, nil
	}
	t.Cleanup(func() { openSerialPort = orig })
}

func TestSerialWriteLoopsOnShortWrites(t *testing.T) {
	port := &fakePort{chunk: 5}
	withFakePort(t, port)

	conn := NewSerialConnection(&SerialConfig{Port: "/dev/ttyS0", BaudRate: 9600}, zaptest.NewLogger(t))
	ctx := context.Background()
	if err := conn.Open(ctx); err != nil {
		t.Fatal(err)
	}

	data := []byte("a line longer than one chunk\n")
	if err := conn.Write(ctx, data); err != nil {
		t.Fatal(err)
	}
	if err := conn.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(data, port.buf.Bytes()); diff != "" {
		t.Errorf("written (-want +got):\n%s", diff)
	}
	if port.drained != 1 {
		t.Errorf("drained %d times", port.drained)
	}

	stats := conn.Stats()
	if stats.BytesWritten != int64(len(data)) || stats.OperationCount != 1 || !stats.IsConnected {
		t.Errorf("stats = %+v", stats)
	}

	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	if port.closed != 1 || conn.IsOpen() {
		t.Errorf("not closed")
	}
	if err := conn.Write(ctx, data); !errors.Is(err, ErrNotOpen) {
		t.Errorf("write after close = %v", err)
	}
}

func TestSerialMode(t *testing.T) {
	mode := serialMode(&SerialConfig{BaudRate: 19200, StopBits: 1, Parity: "even"})
	want := &serial.Mode{BaudRate: 19200, DataBits: 8, StopBits: serial.OneStopBit, Parity: serial.EvenParity}
	if diff := cmp.Diff(want, mode); diff != "" {
		t.Errorf("mode (-want +got):\n%s", diff)
	}

	mode = serialMode(&SerialConfig{BaudRate: 9600, DataBits: 7, StopBits: 2})
	if mode.StopBits != serial.TwoStopBits || mode.DataBits != 7 || mode.Parity != serial.NoParity {
		t.Errorf("mode = %+v", mode)
	}
}

func TestSerialWriteError(t *testing.T) {
	port := &fakePort{err: io.ErrClosedPipe}
	withFakePort(t, port)

	conn := NewSerialConnection(&SerialConfig{Port: "/dev/ttyS0", BaudRate: 9600}, zaptest.NewLogger(t))
	if err := conn.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := conn.Write(context.Background(), []byte{0x1B, 0x40})
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("err = %v", err)
	}
	if conn.Stats().ErrorCount != 1 {
		t.Errorf("error not counted")
	}
}

func TestWriteChecksContext(t *testing.T) {
	port := &fakePort{}
	withFakePort(t, port)

	conn := NewSerialConnection(&SerialConfig{Port: "/dev/ttyS0", BaudRate: 9600}, zaptest.NewLogger(t))
	if err := conn.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := conn.Write(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if port.buf.Len() != 0 {
		t.Errorf("wrote after cancel")
	}
}

func TestTCPConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer c.Close()
		b, _ := io.ReadAll(c)
		received <- b
	}()

	addr := ln.Addr().(*net.TCPAddr)
	conn := NewTCPConnection(&TCPConfig{
		Host:         "127.0.0.1",
		Port:         addr.Port,
		Timeout:      time.Second,
		WriteTimeout: time.Second,
	}, zaptest.NewLogger(t))

	ctx := context.Background()
	if err := conn.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if conn.GetProtocolType() != model.ConnectionTypeTCP {
		t.Errorf("type = %s", conn.GetProtocolType())
	}
	if err := conn.Write(ctx, []byte{0x1B, 0x40}); err != nil {
		t.Fatal(err)
	}
	if err := conn.Write(ctx, []byte("OK\n")); err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if diff := cmp.Diff([]byte("\x1b@OK\n"), got); diff != "" {
			t.Errorf("received (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for data")
	}
}

func TestMemoryConnection(t *testing.T) {
	conn := NewMemoryConnection("test", zaptest.NewLogger(t))
	ctx := context.Background()

	if err := conn.Write(ctx, []byte("x")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("write before open = %v", err)
	}
	if err := conn.Open(ctx); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	conn.FailAfter(2, boom)
	for i, s := range []string{"a", "bc"} {
		if err := conn.Write(ctx, []byte(s)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := conn.Write(ctx, []byte("d")); !errors.Is(err, boom) {
		t.Errorf("third write = %v", err)
	}

	if diff := cmp.Diff([][]byte{[]byte("a"), []byte("bc")}, conn.Writes()); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if string(conn.Bytes()) != "abc" {
		t.Errorf("bytes = %q", conn.Bytes())
	}

	conn.Clear()
	if len(conn.Bytes()) != 0 {
		t.Errorf("not cleared")
	}
	conn.Close()
	if conn.CloseCount() != 1 {
		t.Errorf("close count %d", conn.CloseCount())
	}
}

func TestCreateProtocol(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name     string
		connType model.ConnectionType
		settings Settings
		wantErr  bool
	}{
		{"serial", model.ConnectionTypeSerial, Settings{Serial: SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 19200}}, false},
		{"serial no port", model.ConnectionTypeSerial, Settings{Serial: SerialConfig{BaudRate: 19200}}, true},
		{"serial bad baud", model.ConnectionTypeSerial, Settings{Serial: SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 1234}}, true},
		{"serial bad parity", model.ConnectionTypeSerial, Settings{Serial: SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 9600, Parity: "maybe"}}, true},
		{"tcp", model.ConnectionTypeTCP, Settings{TCP: TCPConfig{Host: "printer.local"}}, false},
		{"tcp no host", model.ConnectionTypeTCP, Settings{}, true},
		{"usb", model.ConnectionTypeUSB, Settings{USB: USBConfig{VendorID: "0x0416", ProductID: "5011", Endpoint: 3}}, false},
		{"usb bad id", model.ConnectionTypeUSB, Settings{USB: USBConfig{VendorID: "zz", ProductID: "5011"}}, true},
		{"memory", model.ConnectionTypeMemory, Settings{}, false},
		{"unknown", model.ConnectionType("BLUETOOTH"), Settings{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateProtocol(tt.connType, tt.settings, logger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.GetProtocolType() != tt.connType {
				t.Errorf("type = %s", p.GetProtocolType())
			}
		})
	}
}

func TestTCPDefaultPort(t *testing.T) {
	p, err := CreateProtocol(model.ConnectionTypeTCP, Settings{TCP: TCPConfig{Host: "10.0.0.5"}}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if p.Address() != "10.0.0.5:9100" {
		t.Errorf("address = %s", p.Address())
	}
}

func TestParseHexID(t *testing.T) {
	for in, want := range map[string]uint16{"0x0416": 0x0416, "5011": 0x5011, "0X04B8": 0x04b8} {
		id, err := ParseHexID(in)
		if err != nil {
			t.Errorf("%s: %v", in, err)
			continue
		}
		if uint16(id) != want {
			t.Errorf("%s = %04x", in, uint16(id))
		}
	}
}
