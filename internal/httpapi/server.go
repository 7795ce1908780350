package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"planfact/internal/export"
	"planfact/internal/forecast"
	"planfact/internal/pipeline"
	"planfact/internal/reconcile"
	"planfact/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// AnalysisRequest is the JSON body of an analysis call.
type AnalysisRequest struct {
	Facts   sales.Table      `json:"facts"`
	Plans   sales.Table      `json:"plans"`
	Options pipeline.Request `json:"options"`
}

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	app      *fiber.App
	defaults pipeline.Options
}

// NewServer builds the fiber app and registers every route.
func NewServer(defaults pipeline.Options) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "planfact",
			BodyLimit:    64 * 1024 * 1024,
			ErrorHandler: errorHandler,
		}),
		defaults: defaults,
	}
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(requestLogger)

	s.app.Get("/healthz", s.handleHealth)
	api := s.app.Group("/api/v1")
	api.Get("/models", s.handleModels)
	api.Post("/analysis", s.handleAnalysis)
	api.Post("/analysis/export", s.handleExport)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the app is shut down.
func (s *Server) Listen(addr string) error {
	log.Info().Str("addr", addr).Msg("HTTP API listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	models := make([]string, 0, len(forecast.Kinds()))
	for _, k := range forecast.Kinds() {
		models = append(models, k.String())
	}
	return c.JSON(fiber.Map{
		"models":    models,
		"scenarios": forecast.Scenarios(),
		"defaults":  s.defaults,
	})
}

func (s *Server) handleAnalysis(c *fiber.Ctx) error {
	report, err := s.run(c)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	report, err := s.run(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.Tables(report)); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(export.WorkbookName)
	return c.Send(buf.Bytes())
}

// run accepts either a JSON AnalysisRequest or a multipart upload with
// "facts" and "plans" files (CSV or XLSX) and option form fields.
func (s *Server) run(c *fiber.Ctx) (*pipeline.Report, error) {
	var req AnalysisRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		var err error
		if req, err = parseUpload(c); err != nil {
			return nil, err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	opts, err := req.Options.Options(s.defaults)
	if err != nil {
		return nil, badRequest(err)
	}
	report, err := pipeline.Run(c.UserContext(), req.Facts, req.Plans, opts)
	if err != nil {
		return nil, badRequest(err)
	}
	return report, nil
}

func parseUpload(c *fiber.Ctx) (AnalysisRequest, error) {
	var req AnalysisRequest
	var err error
	if req.Facts, err = readUpload(c, "facts"); err != nil {
		return req, err
	}
	if req.Plans, err = readUpload(c, "plans"); err != nil {
		return req, err
	}
	if err := c.BodyParser(&req.Options); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid options: "+err.Error())
	}
	return req, nil
}

func readUpload(c *fiber.Ctx, field string) (sales.Table, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return sales.Table{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("missing %q file", field))
	}
	f, err := fh.Open()
	if err != nil {
		return sales.Table{}, err
	}
	defer f.Close()

	var t sales.Table
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx", ".xlsm":
		t, err = sales.ReadXLSX(f)
	default:
		t, err = sales.ReadCSV(f)
	}
	if err != nil {
		return sales.Table{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read %q: %v", field, err))
	}
	return t, nil
}

// badRequest maps caller errors to 400 and leaves everything else as is.
func badRequest(err error) error {
	var schemaErr *sales.SchemaError
	var validationErr *reconcile.ValidationError
	var optionsErr *pipeline.OptionsError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &validationErr), errors.As(err, &optionsErr),
		errors.Is(err, sales.ErrEmptyInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("HTTP request")
	return err
}
