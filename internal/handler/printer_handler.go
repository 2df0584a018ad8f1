// internal/handler/printer_handler.go
package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-service/internal/driver"
	"printer-service/internal/escpos"
	"printer-service/internal/imaging"
	"printer-service/internal/model"
	"printer-service/internal/service"
	"printer-service/internal/utils"
)

// PrinterHandler exposes the printer operations over HTTP
type PrinterHandler struct {
	printerService *service.PrinterService
	logger         *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printerService: printerService,
		logger:         utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	printer := router.Group("/printer")
	{
		printer.GET("", h.GetStatus)
		printer.GET("/models", h.ListModels)

		printer.POST("/reset", h.Reset)
		printer.POST("/normal", h.Normal)
		printer.POST("/format", h.Format)
		printer.POST("/text", h.PrintText)
		printer.POST("/feed", h.Feed)
		printer.POST("/image", h.PrintImage)
		printer.POST("/image/preview", h.PreviewImage)
		printer.POST("/logo", h.PrintLogo)
		printer.POST("/factory-reset", h.FactoryReset)
		printer.POST("/selftest", h.SelfTest)
	}
}

// StatusResponse is the printer status with transport counters
type StatusResponse struct {
	Printer   model.PrinterInfo `json:"printer"`
	Transport interface{}       `json:"transport,omitempty"`
}

// GetStatus returns the printer status
// @Summary Printer status
// @Description Get the configured model, dialect, connection and formatting state
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=StatusResponse} "Printer status"
// @Router /printer [get]
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response := StatusResponse{Printer: h.printerService.Info()}
	if stats, ok := h.printerService.Stats(); ok {
		response.Transport = stats
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer status retrieved", response)
}

// ListModels lists the supported printer models
// @Summary Supported models
// @Description List printer models and the dialect each one speaks
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]driver.ModelInfo} "Supported models"
// @Router /printer/models [get]
func (h *PrinterHandler) ListModels(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Supported models retrieved", h.printerService.Models())
}

// Reset initializes the printer
// @Summary Reset printer
// @Description Initialize the printer and restore default formatting
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Printer reset"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Failure 503 {object} utils.APIResponse "Printer not configured"
// @Router /printer/reset [post]
func (h *PrinterHandler) Reset(c *gin.Context) {
	op, err := h.printerService.Reset(h.operationContext(c))
	h.respond(c, "Printer reset", op, err)
}

// Normal restores default formatting
// @Summary Normal formatting
// @Description Restore default formatting without re-initializing the printer
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Formatting restored"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /printer/normal [post]
func (h *PrinterHandler) Normal(c *gin.Context) {
	op, err := h.printerService.Normal(h.operationContext(c))
	h.respond(c, "Formatting restored", op, err)
}

// Format changes text attributes
// @Summary Set formatting
// @Description Change justification, emphasis, underline, reverse, upside-down, font and scale
// @Tags Printer
// @Accept json
// @Produce json
// @Param request body model.FormatRequest true "Attributes to change"
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Formatting applied"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 422 {object} utils.APIResponse "Not supported by the printer"
// @Router /printer/format [post]
func (h *PrinterHandler) Format(c *gin.Context) {
	var req model.FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	op, err := h.printerService.Format(h.operationContext(c), &req)
	h.respond(c, "Formatting applied", op, err)
}

// PrintText prints text
// @Summary Print text
// @Description Print text, wrapped at the configured line width unless raw
// @Tags Printer
// @Accept json
// @Produce json
// @Param request body model.TextRequest true "Text to print"
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Text printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /printer/text [post]
func (h *PrinterHandler) PrintText(c *gin.Context) {
	var req model.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	op, err := h.printerService.Text(h.operationContext(c), &req)
	h.respond(c, "Text printed", op, err)
}

// Feed advances the paper
// @Summary Feed paper
// @Description Advance the paper by a number of lines (at least one)
// @Tags Printer
// @Accept json
// @Produce json
// @Param request body model.FeedRequest true "Lines to feed"
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Paper fed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Router /printer/feed [post]
func (h *PrinterHandler) Feed(c *gin.Context) {
	var req model.FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	op, err := h.printerService.Feed(h.operationContext(c), req.Lines)
	h.respond(c, "Paper fed", op, err)
}

// PrintImage prints an uploaded image
// @Summary Print image
// @Description Print a PNG, JPEG, GIF, BMP or WebP image, sent as multipart field "image" or as the raw body
// @Tags Printer
// @Accept multipart/form-data
// @Accept octet-stream
// @Produce json
// @Param image formData file false "Image file"
// @Param fit query bool false "Scale images wider than the print head down"
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Image printed"
// @Failure 400 {object} utils.APIResponse "Invalid image"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /printer/image [post]
func (h *PrinterHandler) PrintImage(c *gin.Context) {
	fit, ok := parseFit(c)
	if !ok {
		return
	}
	body, err := imageBody(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "No image in request", err)
		return
	}
	defer body.Close()

	op, err := h.printerService.PrintImage(h.operationContext(c), body, fit)
	h.respond(c, "Image printed", op, err)
}

// PreviewImage renders the raster an image would print as
// @Summary Preview image
// @Description Render the binarized 384 dot raster of an image as PNG without printing
// @Tags Printer
// @Accept multipart/form-data
// @Accept octet-stream
// @Produce png
// @Param image formData file false "Image file"
// @Param fit query bool false "Scale images wider than the print head down"
// @Success 200 {file} binary "Raster preview"
// @Failure 400 {object} utils.APIResponse "Invalid image"
// @Router /printer/image/preview [post]
func (h *PrinterHandler) PreviewImage(c *gin.Context) {
	fit, ok := parseFit(c)
	if !ok {
		return
	}
	body, err := imageBody(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "No image in request", err)
		return
	}
	defer body.Close()

	var out bytes.Buffer
	if err := h.printerService.Preview(body, fit, &out); err != nil {
		status := StatusForError(err)
		utils.ErrorResponse(c, status, "Failed to render preview", err)
		return
	}

	c.Data(http.StatusOK, "image/png", out.Bytes())
}

// PrintLogo prints the logo stored in the printer
// @Summary Print stored logo
// @Description Print the logo held in printer flash
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Logo printed"
// @Failure 422 {object} utils.APIResponse "Not supported by the printer"
// @Router /printer/logo [post]
func (h *PrinterHandler) PrintLogo(c *gin.Context) {
	op, err := h.printerService.PrintLogo(h.operationContext(c))
	h.respond(c, "Logo printed", op, err)
}

// FactoryReset restores factory settings
// @Summary Factory reset
// @Description Restore the printer's factory settings, then reset
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Factory settings restored"
// @Failure 422 {object} utils.APIResponse "Not supported by the printer"
// @Router /printer/factory-reset [post]
func (h *PrinterHandler) FactoryReset(c *gin.Context) {
	op, err := h.printerService.FactoryReset(h.operationContext(c))
	h.respond(c, "Factory settings restored", op, err)
}

// SelfTest prints a style sample page
// @Summary Self test
// @Description Print a page sampling every style the printer supports
// @Tags Printer
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.PrintOperation} "Self test printed"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /printer/selftest [post]
func (h *PrinterHandler) SelfTest(c *gin.Context) {
	op, err := h.printerService.SelfTest(h.operationContext(c))
	h.respond(c, "Self test printed", op, err)
}

func (h *PrinterHandler) operationContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := c.GetString(utils.RequestIDKey); id != "" {
		ctx = service.WithCorrelationID(ctx, id)
	}
	return ctx
}

func (h *PrinterHandler) respond(c *gin.Context, message string, op *model.PrintOperation, err error) {
	if err != nil {
		status := StatusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Printer operation failed", zap.Error(err), zap.Int("status", status))
		}
		utils.ErrorResponse(c, status, "Printer operation failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, op)
}

// StatusForError maps printer errors onto HTTP status codes
func StatusForError(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, escpos.ErrUnsupportedCommand):
		return http.StatusUnprocessableEntity
	case errors.Is(err, escpos.ErrInvalidArgument),
		errors.Is(err, escpos.ErrImageTooWide),
		errors.Is(err, escpos.ErrUnsupportedPixelFormat),
		errors.Is(err, escpos.ErrEmptyImage),
		errors.Is(err, imaging.ErrUnknownFormat),
		errors.Is(err, imaging.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, driver.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, driver.ErrConfiguration),
		errors.Is(err, driver.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func parseFit(c *gin.Context) (bool, bool) {
	raw := c.Query("fit")
	if raw == "" {
		return false, true
	}
	fit, err := strconv.ParseBool(raw)
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"fit": "must be a boolean"})
		return false, false
	}
	return fit, true
}

// imageBody returns the multipart "image" file, or the request body for
// any other content type
func imageBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			return nil, err
		}
		return header.Open()
	}

	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, errors.New("empty request body")
	}
	return http.MaxBytesReader(c.Writer, c.Request.Body, imaging.MaxUploadBytes), nil
}
