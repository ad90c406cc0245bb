// Package api serves the decoding engine over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/scribe/internal/device"
	"github.com/samcharles93/scribe/internal/version"
)

type Server struct {
	store   *GenerationStore
	service *GenerationService
}

func NewServer(store *GenerationStore, service *GenerationService) *Server {
	if store == nil {
		store = NewGenerationStore(DefaultStoreCapacity)
	}
	return &Server{
		store:   store,
		service: service,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/generate", s.handleGenerate)
	e.GET("/v1/generations/:id", s.handleGetGeneration)
	e.DELETE("/v1/generations/:id", s.handleDeleteGeneration)

	e.POST("/v1/tokenize", s.handleTokenize)
	e.POST("/v1/detokenize", s.handleDetokenize)
	e.GET("/v1/devices", s.handleDevices)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: version.String()})
}

func (s *Server) handleGenerate(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "generation service not configured", "")
	}
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ctx := c.Request().Context()

	if req.Stream == nil || !*req.Stream {
		resp, err := s.service.Generate(ctx, &req, nil)
		if err != nil {
			return writeServiceError(c, err)
		}
		s.store.Put(*resp)
		return c.JSON(http.StatusOK, resp)
	}

	sw, err := NewSSEStreamWriter(c)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	resp, err := s.service.Generate(ctx, &req, sw)
	if err != nil {
		if !sw.Started() {
			return writeServiceError(c, err)
		}
		return sw.Failed(err)
	}
	s.store.Put(*resp)
	return sw.Complete(*resp)
}

func (s *Server) handleGetGeneration(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteGeneration(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "generation not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":      id,
		"object":  "generation.deleted",
		"deleted": true,
	})
}

func (s *Server) handleTokenize(c *echo.Context) error {
	req, err := decodeJSON[TokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ids, err := s.service.Tokenize(c.Request().Context(), req.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	if ids == nil {
		ids = []int{}
	}
	return c.JSON(http.StatusOK, TokenizeResponse{TokenIDs: ids, Count: len(ids)})
}

func (s *Server) handleDetokenize(c *echo.Context) error {
	req, err := decodeJSON[DetokenizeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	text, err := s.service.Detokenize(c.Request().Context(), req.TokenIDs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, DetokenizeResponse{Text: text})
}

func (s *Server) handleDevices(c *echo.Context) error {
	avail := device.Available()
	names := make([]string, 0, len(avail))
	for _, d := range avail {
		names = append(names, d.String())
	}
	features := device.HostFeatures()
	if features == nil {
		features = []string{}
	}
	resp := DevicesResponse{Devices: names, CPUFeatures: features}
	if s.service != nil {
		resp.VocabSize = s.service.VocabSize(c.Request().Context())
	}
	return c.JSON(http.StatusOK, resp)
}
