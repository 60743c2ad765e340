package httpapi

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// AppName is reported by fiber in the Server header.
const AppName = "rentald"

const (
	logMsgRequestFailed = "http request failed"
	logAttrMethod       = "method"
	logAttrPath         = "path"
	logAttrStatus       = "status"
	logAttrError        = "error"
	logAttrRequestID    = "request_id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	logger   rental.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for failed requests.
func WithLogger(logger rental.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for the given handlers.
func NewServer(handlers Handlers, opts ...Option) *Server {
	s := &Server{handlers: handlers}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ErrorHandler: s.errorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + HeaderRequestID,
	}))

	s.routes(app)

	return app
}

func (s *Server) routes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/health", s.health)

	items := api.Group("/items")
	items.Post("/", s.registerItem)                              // POST /api/v1/items
	items.Get("/:itemId/status", s.itemStatus)                   // GET /api/v1/items/:itemId/status
	items.Get("/:itemId/audit", s.auditLog)                      // GET /api/v1/items/:itemId/audit?limit=
	items.Put("/:itemId/manual-status", s.setManualStatus)       // PUT /api/v1/items/:itemId/manual-status
	items.Post("/:itemId/reservations", s.reserve)               // POST /api/v1/items/:itemId/reservations
	items.Post("/:itemId/reservations/cancel", s.cancelByHolder) // POST /api/v1/items/:itemId/reservations/cancel
	items.Post("/:itemId/loans", s.directLoan)                   // POST /api/v1/items/:itemId/loans
	items.Post("/:itemId/loans/return", s.returnByHolder)        // POST /api/v1/items/:itemId/loans/return

	holds := api.Group("/holds")
	holds.Post("/:holdId/convert", s.convertToLoan) // POST /api/v1/holds/:holdId/convert
	holds.Post("/:holdId/return", s.returnLoan)     // POST /api/v1/holds/:holdId/return
	holds.Post("/:holdId/cancel", s.cancel)         // POST /api/v1/holds/:holdId/cancel

	holders := api.Group("/holders")
	holders.Get("/holds", s.holderHolds)        // GET /api/v1/holders/holds?userId=|guestName=
	holders.Post("/approve-all", s.bulkApprove) // POST /api/v1/holders/approve-all
	holders.Post("/return-all", s.bulkReturn)   // POST /api/v1/holders/return-all

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return successResponse(c, "rental service is healthy", map[string]any{
		"service": AppName,
		"status":  "healthy",
	})
}

// errorHandler renders every error returned by a route in the API envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, code := StatusAndCode(err)

	if s.logger != nil && status >= fiber.StatusInternalServerError {
		s.logger.Error(logMsgRequestFailed,
			logAttrMethod, c.Method(),
			logAttrPath, c.Path(),
			logAttrStatus, status,
			logAttrError, err.Error(),
			logAttrRequestID, requestID(c),
		)
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		message = "internal server error"
	}

	var details map[string]any
	if errors.Is(err, rental.ErrTransient) {
		details = map[string]any{"retryable": true}
	}

	return errorResponse(c, status, code, message, details)
}
