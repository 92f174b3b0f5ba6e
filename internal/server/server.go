// Package server exposes the HTTP API: upload, chat and health.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"docchat/internal/extractor"
	"docchat/internal/ingest"
	"docchat/internal/rag"
)

// Server is a thin presentation layer over the ingestion orchestrator
// and the RAG pipeline.
type Server struct {
	echo     *echo.Echo
	ingestor *ingest.Ingestor
	pipeline *rag.Pipeline
	dataDir  string
	logger   zerolog.Logger
	addr     string
}

// Config holds the HTTP server settings.
type Config struct {
	Host    string
	Port    int
	DataDir string
}

// NewServer wires the routes. Dependencies are explicit; there is no
// process-global state.
func NewServer(cfg Config, ingestor *ingest.Ingestor, pipeline *rag.Pipeline, logger zerolog.Logger) (*Server, error) {
	if ingestor == nil {
		return nil, fmt.Errorf("ingestor is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info().
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("http request")
			return err
		}
	})

	s := &Server{
		echo:     e,
		ingestor: ingestor,
		pipeline: pipeline,
		dataDir:  cfg.DataDir,
		logger:   logger,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}

	e.POST("/upload", s.handleUpload)
	e.POST("/chat", s.handleChat)
	e.GET("/health", s.handleHealth)

	return s, nil
}

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	Message     string `json:"message"`
	ChunksAdded int    `json:"chunks_added"`
}

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries client-facing error detail.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// handleUpload accepts a multipart file, validates its extension against
// the allowed set before anything touches disk, saves it under the data
// directory (overwriting a same-named file) and ingests it.
func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "file field is required"})
	}

	filename := filepath.Base(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !extractor.Supported(ext) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Detail: fmt.Sprintf("Unsupported file type: %s. Allowed: %s", ext, strings.Join(extractor.Extensions(), ", ")),
		})
	}

	destPath := filepath.Join(s.dataDir, filename)
	if err := saveUpload(fileHeader, destPath); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("Error saving upload")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "failed to store file"})
	}

	chunks, err := s.ingestor.Ingest(c.Request().Context(), destPath)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		}
		s.logger.Error().Err(err).Str("file", filename).Msg("Error ingesting file")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "failed to ingest file"})
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Message:     "File uploaded and ingested",
		ChunksAdded: chunks,
	})
}

// handleChat runs one RAG turn. The question is passed through without
// validation.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	state, err := s.pipeline.Run(c.Request().Context(), req.Question)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error answering question")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "failed to answer question"})
	}

	return c.JSON(http.StatusOK, ChatResponse{Answer: state.Answer})
}

// handleHealth reports liveness unconditionally; no dependency check is
// performed.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Msg("Starting http server")
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func saveUpload(fileHeader *multipart.FileHeader, destPath string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
