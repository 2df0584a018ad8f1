// internal/service/printer_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"printer-service/internal/config"
	"printer-service/internal/driver"
	"printer-service/internal/escpos"
	"printer-service/internal/imaging"
	"printer-service/internal/model"
	"printer-service/internal/protocol"
	"printer-service/internal/repository"
	"printer-service/internal/utils"
)

// EventPublisher receives printer and operation events
type EventPublisher interface {
	Publish(event model.PrinterEvent)
}

// Connector creates a new, unopened connection to the printer
type Connector func() (protocol.PrinterProtocol, error)

// Option configures a PrinterService
type Option func(*PrinterService)

// WithConnector replaces the connection factory built from configuration
func WithConnector(c Connector) Option {
	return func(ps *PrinterService) {
		ps.connect = c
	}
}

// WithSessionOptions appends options to every session the service opens
func WithSessionOptions(opts ...driver.Option) Option {
	return func(ps *PrinterService) {
		ps.sessionOpts = append(ps.sessionOpts, opts...)
	}
}

// WithOperationRepository records finished operations in repo instead of
// a private in-memory history
func WithOperationRepository(repo repository.OperationRepository) Option {
	return func(ps *PrinterService) {
		ps.operations = repo
	}
}

// PrinterService owns the single printer session and serializes every caller
// onto it. A failed write drops the session; the next operation reconnects
// and resets the printer.
type PrinterService struct {
	mu sync.Mutex

	cfg            config.PrinterConfig
	modelInfo      driver.ModelInfo
	registry       *driver.Registry
	dialect        *escpos.Dialect
	connectionType model.ConnectionType
	charset        encoding.Encoding
	encoder        *escpos.Encoder
	columns        int

	connect     Connector
	sessionOpts []driver.Option
	conn        protocol.PrinterProtocol
	session     *driver.Session

	status      model.PrinterStatus
	connectedAt *time.Time
	lastError   *string

	operations    repository.OperationRepository
	publisher     EventPublisher
	logger        *utils.ServiceLogger
	printerLogger *utils.PrinterLogger
}

// NewPrinterService resolves the configured model to a dialect and prepares
// the connection. It does not touch the printer; call Connect for that.
func NewPrinterService(
	cfg *config.PrinterConfig,
	registry *driver.Registry,
	publisher EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) (*PrinterService, error) {
	info, err := registry.Lookup(cfg.Brand, cfg.Model)
	if err != nil {
		return nil, err
	}

	dialect := info.Dialect
	if cfg.Dialect != "" {
		if dialect, err = escpos.LookupDialect(cfg.Dialect); err != nil {
			return nil, fmt.Errorf("%w: %w", driver.ErrConfiguration, err)
		}
	}

	charset, err := driver.LookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}

	connectionType, ok := model.ParseConnectionType(cfg.ConnectionType)
	if !ok {
		return nil, fmt.Errorf("connection type %q: %w", cfg.ConnectionType, driver.ErrConfiguration)
	}

	columns := cfg.ColumnsPerLine
	if columns == 0 {
		columns = info.ColumnsPerLine
	}
	if columns == 0 {
		columns = driver.DefaultColumns
	}

	ps := &PrinterService{
		cfg:            *cfg,
		modelInfo:      info,
		registry:       registry,
		dialect:        dialect,
		connectionType: connectionType,
		charset:        charset,
		encoder: &escpos.Encoder{
			BlackThreshold: cfg.BlackThreshold,
			AlphaThreshold: cfg.AlphaThreshold,
		},
		columns:   columns,
		status:    model.PrinterStatusOffline,
		publisher: publisher,
		logger:    utils.NewServiceLogger(logger, "printer-service"),
		printerLogger: utils.NewPrinterLogger(logger,
			info.Brand+" "+info.Model, dialect.Name, string(connectionType)),
	}

	// The serial baud rate follows the model unless configured
	if ps.cfg.Serial.BaudRate == 0 {
		ps.cfg.Serial.BaudRate = info.BaudRate
	}
	ps.connect = func() (protocol.PrinterProtocol, error) {
		return protocol.CreateProtocol(connectionType, ps.cfg.ProtocolSettings(), ps.printerLogger.Logger)
	}

	for _, opt := range opts {
		opt(ps)
	}
	if ps.operations == nil {
		ps.operations = repository.NewMemoryOperationRepository(cfg.HistorySize, logger)
	}
	return ps, nil
}

// Connect opens the transport and resets the printer, retrying
// ReconnectAttempts times
func (ps *PrinterService) Connect(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.connectLocked(ctx)
}

func (ps *PrinterService) connectLocked(ctx context.Context) error {
	if ps.session != nil {
		return nil
	}

	ps.status = model.PrinterStatusConnecting

	attempts := ps.cfg.ReconnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if werr := (driver.SleepWaiter{}).Wait(ctx, ps.cfg.ReconnectDelay); werr != nil {
				err = werr
				break
			}
		}

		if err = ps.openSession(ctx); err == nil {
			now := time.Now()
			ps.status = model.PrinterStatusOnline
			ps.connectedAt = &now
			ps.lastError = nil
			ps.printerLogger.LogConnection("connect", ps.conn.Address(), nil)
			ps.publish(model.NewPrinterEvent(model.EventPrinterConnected, "INFO", map[string]interface{}{
				"address": ps.conn.Address(),
				"dialect": ps.dialect.Name,
			}))
			return nil
		}

		ps.printerLogger.Warn("Printer connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if errors.Is(err, driver.ErrConfiguration) {
			break
		}
	}

	ps.setError(err)
	ps.printerLogger.LogConnection("connect", "", err)
	return err
}

func (ps *PrinterService) openSession(ctx context.Context) error {
	conn, err := ps.connect()
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrConfiguration, err)
	}
	if err := conn.Open(ctx); err != nil {
		return fmt.Errorf("%w: open %s: %w", driver.ErrConfiguration, conn.Address(), err)
	}

	opts := []driver.Option{
		driver.WithLogger(ps.printerLogger.Logger),
		driver.WithCharset(ps.charset),
		driver.WithEncoder(ps.encoder),
	}
	if ps.cfg.DisableDelays {
		opts = append(opts, driver.WithoutDelays())
	}
	opts = append(opts, ps.sessionOpts...)

	session, err := driver.NewSession(ctx, conn, ps.dialect, opts...)
	if err != nil {
		return err
	}

	ps.conn = conn
	ps.session = session
	return nil
}

// dropSession closes a session whose transport failed
func (ps *PrinterService) dropSession(cause error) {
	if ps.session == nil {
		return
	}

	if err := ps.session.Close(); err != nil && !errors.Is(err, driver.ErrClosed) {
		ps.printerLogger.Warn("Failed to close printer session", zap.Error(err))
	}
	ps.session = nil
	ps.setError(cause)

	ps.printerLogger.LogConnection("disconnect", ps.conn.Address(), cause)
	ps.publish(model.NewPrinterEvent(model.EventPrinterDisconnected, "WARNING", map[string]interface{}{
		"address": ps.conn.Address(),
		"reason":  cause.Error(),
	}))
}

func (ps *PrinterService) setError(err error) {
	ps.status = model.PrinterStatusError
	msg := err.Error()
	ps.lastError = &msg

	ps.publish(model.NewPrinterEvent(model.EventPrinterError, "ERROR", map[string]interface{}{
		"error": msg,
	}))
}

// ensureSession reconnects a dropped session and resets a printer whose
// state became unknown
func (ps *PrinterService) ensureSession(ctx context.Context) error {
	if err := ps.connectLocked(ctx); err != nil {
		return err
	}
	if !ps.session.StateUnknown() {
		return nil
	}

	ps.printerLogger.Info("Printer state unknown, resetting")
	return ps.session.Reset(ctx)
}

// run executes fn on the session as one recorded operation
func (ps *PrinterService) run(ctx context.Context, opType model.OperationType, fn func(ctx context.Context, s *driver.Session) error) (*model.PrintOperation, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	op := model.NewPrintOperation(opType)
	if id := CorrelationID(ctx); id != "" {
		op.CorrelationID = &id
	}
	opLogger := utils.NewOperationLogger(ps.logger.Logger, string(opType), op.ID.String())
	opLogger.Start()
	ps.publish(model.OperationEvent(op))

	if ps.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ps.cfg.OperationTimeout)
		defer cancel()
	}

	err := ps.ensureSession(ctx)
	if err == nil {
		err = fn(ctx, ps.session)
	}
	if errors.Is(err, driver.ErrTransport) {
		ps.dropSession(err)
	}

	op.Complete(err)
	if err != nil {
		opLogger.Error(err)
	} else {
		opLogger.Success()
	}
	if recordErr := ps.operations.Create(context.WithoutCancel(ctx), op); recordErr != nil {
		ps.logger.Warn("Failed to record operation", zap.Error(recordErr))
	}
	ps.publish(model.OperationEvent(op))

	return op, err
}

func (ps *PrinterService) publish(event model.PrinterEvent) {
	if ps.publisher != nil {
		ps.publisher.Publish(event)
	}
}

// Info returns the printer configuration and session state
func (ps *PrinterService) Info() model.PrinterInfo {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	info := model.PrinterInfo{
		Model:          ps.modelInfo.Brand + " " + ps.modelInfo.Model,
		Dialect:        ps.dialect.Name,
		Description:    ps.dialect.Description,
		ConnectionType: ps.connectionType,
		Status:         ps.status,
		State:          escpos.DefaultState(),
		Capabilities:   model.CapabilitiesOf(ps.dialect),
		ColumnsPerLine: ps.columns,
		ConnectedAt:    ps.connectedAt,
		LastError:      ps.lastError,
	}
	if ps.conn != nil {
		info.Address = ps.conn.Address()
	}
	if ps.session != nil {
		info.State = ps.session.State()
		info.StateUnknown = ps.session.StateUnknown()
	}
	return info
}

// Stats returns transport counters, or false before the first connection
func (ps *PrinterService) Stats() (protocol.ProtocolStats, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.conn == nil {
		return protocol.ProtocolStats{}, false
	}
	return ps.conn.Stats(), true
}

// Ready reports whether a session is open
func (ps *PrinterService) Ready() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.session != nil
}

// Models lists the printer models the service knows
func (ps *PrinterService) Models() []driver.ModelInfo {
	return ps.registry.List()
}

// Reset initializes the printer and restores default formatting
func (ps *PrinterService) Reset(ctx context.Context) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeReset, func(ctx context.Context, s *driver.Session) error {
		return s.Reset(ctx)
	})
}

// Normal restores default formatting without initializing
func (ps *PrinterService) Normal(ctx context.Context) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeNormal, func(ctx context.Context, s *driver.Session) error {
		return s.Normal(ctx)
	})
}

// Format applies the attributes set in req
func (ps *PrinterService) Format(ctx context.Context, req *model.FormatRequest) (*model.PrintOperation, error) {
	steps, err := formatSteps(req)
	if err != nil {
		return nil, err
	}

	return ps.run(ctx, model.OperationTypeFormat, func(ctx context.Context, s *driver.Session) error {
		return applySteps(ctx, s, steps)
	})
}

// Text prints one block of text, wrapped at the configured columns unless
// raw. A trailing newline is added when missing.
func (ps *PrinterService) Text(ctx context.Context, req *model.TextRequest) (*model.PrintOperation, error) {
	var steps []formatStep
	if req.Format != nil {
		var err error
		if steps, err = formatSteps(req.Format); err != nil {
			return nil, err
		}
	}

	columns := ps.columns
	if req.Columns != nil {
		if *req.Columns < 0 {
			return nil, fmt.Errorf("columns %d: %w", *req.Columns, escpos.ErrInvalidArgument)
		}
		columns = *req.Columns
	}
	if req.Raw {
		columns = 0
	}

	text := req.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	return ps.run(ctx, model.OperationTypeText, func(ctx context.Context, s *driver.Session) error {
		if err := applySteps(ctx, s, steps); err != nil {
			return err
		}
		return s.PrintText(ctx, text, columns)
	})
}

// Feed advances the paper
func (ps *PrinterService) Feed(ctx context.Context, lines int) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeFeed, func(ctx context.Context, s *driver.Session) error {
		return s.LineFeed(ctx, lines)
	})
}

// PrintImage decodes an image and prints it as a raster. With fit, wider
// images are scaled down to the print head.
func (ps *PrinterService) PrintImage(ctx context.Context, r io.Reader, fit bool) (*model.PrintOperation, error) {
	buf, format, err := imaging.Load(r, fit)
	if err != nil {
		return nil, err
	}
	ps.logger.Debug("Image decoded",
		zap.String("format", format),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
	)

	return ps.run(ctx, model.OperationTypeImage, func(ctx context.Context, s *driver.Session) error {
		return s.PrintImage(ctx, buf)
	})
}

// Preview renders the raster an image would print as, as PNG, without
// touching the printer
func (ps *PrinterService) Preview(r io.Reader, fit bool, w io.Writer) error {
	buf, _, err := imaging.Load(r, fit)
	if err != nil {
		return err
	}

	raster, err := ps.encoder.Encode(buf)
	if err != nil {
		return err
	}
	return imaging.WritePreviewPNG(w, raster)
}

// PrintLogo prints the logo stored in printer flash
func (ps *PrinterService) PrintLogo(ctx context.Context) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeLogo, func(ctx context.Context, s *driver.Session) error {
		return s.PrintLogo(ctx)
	})
}

// FactoryReset restores the printer's factory settings
func (ps *PrinterService) FactoryReset(ctx context.Context) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeFactoryReset, func(ctx context.Context, s *driver.Session) error {
		ps.logger.Warn("Factory reset requested", zap.String("dialect", ps.dialect.Name))
		return s.FactoryReset(ctx)
	})
}

// SelfTest prints a page sampling every style the dialect supports
func (ps *PrinterService) SelfTest(ctx context.Context) (*model.PrintOperation, error) {
	return ps.run(ctx, model.OperationTypeSelfTest, func(ctx context.Context, s *driver.Session) error {
		return printSelfTest(ctx, s, ps.modelInfo, ps.columns)
	})
}

// Close closes the session
func (ps *PrinterService) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.session == nil {
		return nil
	}

	err := ps.session.Close()
	ps.session = nil
	ps.status = model.PrinterStatusOffline
	ps.printerLogger.LogConnection("disconnect", ps.conn.Address(), err)
	ps.publish(model.NewPrinterEvent(model.EventPrinterDisconnected, "INFO", map[string]interface{}{
		"address": ps.conn.Address(),
		"reason":  "shutdown",
	}))
	return err
}

type correlationKey struct{}

// WithCorrelationID tags operations started with ctx
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the ID set by WithCorrelationID
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
