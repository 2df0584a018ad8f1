// internal/driver/session.go
package driver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"printer-service/internal/escpos"
)

// Session drives one printer over one transport. It owns the transport,
// keeps the formatting state machine in step with what was written and
// sleeps after each write as the dialect requires.
//
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	transport Transport
	machine   *escpos.Machine
	encoder   *escpos.Encoder
	charset   encoding.Encoding
	delays    escpos.DelayPolicy
	waiter    Waiter
	logger    *zap.Logger

	stateUnknown bool
	closed       bool
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithWaiter replaces the wall clock waiter
func WithWaiter(w Waiter) Option {
	return func(s *Session) {
		s.waiter = w
	}
}

// WithoutDelays disables all settle delays, for simulation and tests
func WithoutDelays() Option {
	return WithWaiter(noWaiter{})
}

// WithDelayPolicy overrides the dialect's settle delays
func WithDelayPolicy(p escpos.DelayPolicy) Option {
	return func(s *Session) {
		s.delays = p
	}
}

// WithCharset sets the text encoding (default: bytes passed through)
func WithCharset(enc encoding.Encoding) Option {
	return func(s *Session) {
		s.charset = enc
	}
}

// WithEncoder sets the raster encoder thresholds
func WithEncoder(e *escpos.Encoder) Option {
	return func(s *Session) {
		s.encoder = e
	}
}

// NewSession takes ownership of transport and resets the printer. If the
// reset fails the transport is closed and the error returned.
func NewSession(ctx context.Context, transport Transport, dialect *escpos.Dialect, opts ...Option) (*Session, error) {
	if transport == nil {
		return nil, fmt.Errorf("new session: nil transport: %w", ErrConfiguration)
	}
	if dialect == nil {
		transport.Close()
		return nil, fmt.Errorf("new session: nil dialect: %w", ErrConfiguration)
	}

	s := &Session{
		transport: transport,
		machine:   escpos.NewMachine(dialect),
		encoder:   escpos.NewEncoder(),
		charset:   encoding.Nop,
		delays:    dialect.Delays,
		waiter:    SleepWaiter{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("dialect", dialect.Name))

	if err := s.Reset(ctx); err != nil {
		s.closed = true
		if cerr := transport.Close(); cerr != nil {
			s.logger.Warn("Failed to close transport after reset failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("new session: %w", err)
	}

	s.logger.Info("Printer session started")
	return s, nil
}

// Dialect returns the dialect the session speaks
func (s *Session) Dialect() *escpos.Dialect {
	return s.machine.Dialect()
}

// State returns the logical formatting state
func (s *Session) State() escpos.FormattingState {
	return s.machine.State()
}

// StateUnknown reports whether a write failed since the last Reset
func (s *Session) StateUnknown() bool {
	return s.stateUnknown
}

// ready is checked before a state machine step so that a refused call
// leaves the logical state untouched
func (s *Session) ready(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// write sends one buffer and waits the settle time for class. A context that
// ends between the writes of one operation leaves the printer in an unknown
// state.
func (s *Session) write(ctx context.Context, class escpos.DelayClass, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		s.stateUnknown = true
		return err
	}

	if err := s.transport.Write(ctx, data); err != nil {
		s.stateUnknown = true
		s.logger.Error("Printer write failed", zap.Error(err), zap.Int("bytes", len(data)))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	s.logger.Debug("Printer write", zap.Binary("data", data))

	return s.waiter.Wait(ctx, s.delays.For(class))
}

// Reset initializes the printer and returns it to the default formatting.
// The defaults go out only after the reset settle time; the printer drops
// commands while it initializes. It is the only operation that clears
// StateUnknown.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	if err := s.write(ctx, escpos.DelayReset, s.machine.Init()); err != nil {
		return err
	}
	if err := s.write(ctx, escpos.DelayCommand, s.machine.Normal()); err != nil {
		return err
	}
	s.stateUnknown = false
	return nil
}

// Normal restores default formatting without re-initializing
func (s *Session) Normal(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, s.machine.Normal())
}

// SetJustification selects text alignment
func (s *Session) SetJustification(ctx context.Context, j escpos.Justification) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetJustification(j)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetEmphasis switches bold printing
func (s *Session) SetEmphasis(ctx context.Context, on bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetEmphasis(on)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetUnderline switches underlining
func (s *Session) SetUnderline(ctx context.Context, on bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetUnderline(on)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetReverse switches white-on-black printing
func (s *Session) SetReverse(ctx context.Context, on bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetReverse(on)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetUpsideDown switches rotated printing
func (s *Session) SetUpsideDown(ctx context.Context, on bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetUpsideDown(on)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetAltFont switches the alternate font
func (s *Session) SetAltFont(ctx context.Context, on bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetAltFont(on)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// SetScale sets the character multiplier, clamping out of range values to 1
func (s *Session) SetScale(ctx context.Context, width, height int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := s.machine.SetScale(width, height)
	if err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayCommand, data)
}

// LineFeed advances count lines (at least one)
func (s *Session) LineFeed(ctx context.Context, count int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.write(ctx, escpos.DelayText, s.machine.LineFeed(count))
}

// Print prints text followed by a newline
func (s *Session) Print(ctx context.Context, text string) error {
	return s.PrintText(ctx, text+"\n", 0)
}

// PrintText prints text as is, or wrapped every columns characters when
// columns is positive. No newline is appended.
func (s *Session) PrintText(ctx context.Context, text string, columns int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	data, err := encodeText(s.charset, escpos.Wrap(text, columns))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return s.write(ctx, escpos.DelayText, data)
}

// PrintImage rasterizes buf and sends it chunk by chunk. Encoding errors
// are reported before anything is written.
func (s *Session) PrintImage(ctx context.Context, buf escpos.PixelBuffer) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	raster, err := s.encoder.Encode(buf)
	if err != nil {
		return err
	}

	frames := s.Dialect().RasterFrames(raster)
	s.logger.Debug("Printing raster",
		zap.Int("width", buf.Width),
		zap.Int("height", raster.Height()),
		zap.Int("frames", len(frames)),
	)

	for _, f := range frames {
		class := escpos.DelayCommand
		if f.Kind == escpos.FrameRow {
			class = escpos.DelayRasterRow
		}
		if err := s.write(ctx, class, f.Data); err != nil {
			return err
		}
	}
	return s.flush(ctx)
}

// PrintLogo prints the logo stored in printer flash
func (s *Session) PrintLogo(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	d := s.Dialect()
	if d.Logo == nil {
		return fmt.Errorf("print logo on %s: %w", d.Name, escpos.ErrUnsupportedCommand)
	}
	return s.write(ctx, escpos.DelayText, append([]byte(nil), d.Logo...))
}

// FactoryReset restores the printer's factory settings, then resets
func (s *Session) FactoryReset(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	d := s.Dialect()
	if d.FactoryReset == nil {
		return fmt.Errorf("factory reset on %s: %w", d.Name, escpos.ErrUnsupportedCommand)
	}
	if err := s.write(ctx, escpos.DelayReset, append([]byte(nil), d.FactoryReset...)); err != nil {
		return err
	}
	return s.Reset(ctx)
}

func (s *Session) flush(ctx context.Context) error {
	f, ok := s.transport.(Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.stateUnknown = true
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// Close flushes pending output and closes the transport. Further calls
// return ErrClosed.
func (s *Session) Close() error {
	if s.closed {
		return ErrClosed
	}

	ferr := s.flush(context.Background())
	s.closed = true

	if err := s.transport.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	s.logger.Info("Printer session closed")
	return ferr
}
