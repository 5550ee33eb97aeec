// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tmattila/artstore-go/internal/conf"
	"github.com/tmattila/artstore-go/internal/datastore"
	"github.com/tmattila/artstore-go/internal/errors"
	"github.com/tmattila/artstore-go/internal/logging"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	logger         *log.Logger
	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error
	startTime      *time.Time
}

// ipExtractorFromProxyHeaders resolves the client IP behind common proxy headers.
func ipExtractorFromProxyHeaders(req *http.Request) string {
	// X-Forwarded-For, taking the first valid IP
	xff := req.Header.Get(echo.HeaderXForwardedFor)
	if xff != "" {
		for part := range strings.SplitSeq(xff, ",") {
			ipStr := strings.TrimSpace(part)
			if ip := net.ParseIP(ipStr); ip != nil {
				return ip.String()
			}
		}
	}

	// X-Real-IP
	xri := req.Header.Get(echo.HeaderXRealIP)
	if xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	// Fallback to remote address, stripping the port if present
	remoteAddr, _, _ := net.SplitHostPort(req.RemoteAddr)
	if ip := net.ParseIP(remoteAddr); ip != nil {
		return ip.String()
	}
	return remoteAddr
}

// New creates a new API controller and registers all routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, logger *log.Logger) *Controller {
	return NewWithOptions(e, ds, settings, logger, true)
}

// NewWithOptions creates a new API controller with optional route initialization.
// Set initializeRoutes to false in tests that register handlers directly.
func NewWithOptions(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, logger *log.Logger, initializeRoutes bool) *Controller {
	if logger == nil {
		logger = log.Default()
	}

	e.IPExtractor = ipExtractorFromProxyHeaders

	c := &Controller{
		Echo:     e,
		DS:       ds,
		Settings: settings,
		logger:   logger,
	}

	// Initialize structured logger for API requests
	apiLogPath := "logs/web.log"
	c.apiLevelVar = new(slog.LevelVar)
	if settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	} else {
		c.apiLevelVar.Set(slog.LevelInfo)
	}

	apiLogger, closeFunc, err := logging.NewFileLogger(apiLogPath, "api", c.apiLevelVar)
	if err != nil {
		logger.Printf("Warning: Failed to initialize API structured logger: %v", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: c.apiLevelVar})
		c.apiLogger = slog.New(fbHandler).With("service", "api")
		c.apiLoggerClose = func() error { return nil }
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
		logger.Printf("API structured logging initialized to %s", apiLogPath)
	}

	// Create v2 API group
	c.Group = e.Group("/api/v2")

	// Configure middlewares
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("1M"))
	c.Group.Use(c.LoggingMiddleware())

	// Initialize start time for uptime tracking
	now := time.Now()
	c.startTime = &now

	if initializeRoutes {
		c.initRoutes()
	}

	return c
}

// LoggingMiddleware creates a middleware function that logs API requests
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)

			if c.apiLogger == nil {
				return err
			}

			req := ctx.Request()
			res := ctx.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("query", req.URL.RawQuery),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.String("user_agent", req.UserAgent()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			c.apiLogger.LogAttrs(ctx.Request().Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	// Liveness probe on the bare echo instance, outside the versioned group
	c.Echo.GET("/", c.Liveness)

	// Health check endpoint - publicly accessible
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"system routes", c.initSystemRoutes},
		{"artifact routes", c.initArtifactRoutes},
		{"collection routes", c.initCollectionRoutes},
		{"preset routes", c.initPresetRoutes},
		{"caption routes", c.initCaptionRoutes},
		{"artifact caption map routes", c.initArtifactCaptionMapRoutes},
		{"user routes", c.initUserRoutes},
	}

	for _, initializer := range routeInitializers {
		c.Debug("Initializing %s...", initializer.name)
		initializer.fn()
	}
}

// Shutdown performs cleanup of all resources used by the API controller.
// This should be called when the application is shutting down.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Error closing API log file: %v", err)
		}
	}

	c.Debug("API Controller shutting down")
}

// Error response structure
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// statusForError maps datastore error categories to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConflict(err):
		return http.StatusConflict
	case errors.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	ip := ctx.RealIP()

	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}

		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// handleDSError maps a datastore error to the right HTTP status and responds.
func (c *Controller) handleDSError(ctx echo.Context, err error, message string) error {
	return c.HandleError(ctx, err, message, statusForError(err))
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)

		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}

// logAPIRequest is a helper to log API requests with common context fields.
func (c *Controller) logAPIRequest(ctx echo.Context, level slog.Level, msg string, args ...any) {
	if c.apiLogger == nil {
		return
	}

	baseAttrs := []any{
		"path", ctx.Request().URL.Path,
		"ip", ctx.RealIP(),
	}
	baseAttrs = append(baseAttrs, args...)

	switch level {
	case slog.LevelDebug:
		c.apiLogger.Debug(msg, baseAttrs...)
	case slog.LevelInfo:
		c.apiLogger.Info(msg, baseAttrs...)
	case slog.LevelWarn:
		c.apiLogger.Warn(msg, baseAttrs...)
	case slog.LevelError:
		c.apiLogger.Error(msg, baseAttrs...)
	default:
		c.apiLogger.Log(ctx.Request().Context(), level, msg, baseAttrs...)
	}
}
