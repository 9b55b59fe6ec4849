// Package api exposes the data layer to the presentation layer over HTTP.
// Handlers translate transport concerns only; all policy lives in the
// board and below.
package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mlebreton/veille-aap/internal/board"
	"github.com/mlebreton/veille-aap/internal/models"
	"github.com/mlebreton/veille-aap/internal/pipeline"
	"github.com/mlebreton/veille-aap/internal/query"
)

type Server struct {
	Board *board.Board
	Echo  *echo.Echo
}

func NewServer(b *board.Board, corsOrigins []string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	s := &Server{Board: b, Echo: e}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/meta", s.handleGetMeta)
	api.GET("/pipeline", s.handleGetPipeline)
	api.POST("/reload", s.handleReload)

	api.PATCH("/opportunities/:id/annotation", s.handlePatchAnnotation)
	api.PATCH("/opportunities/:id/score", s.handlePatchScore)
	api.POST("/opportunities/:id/move", s.handleMove)
	api.POST("/opportunities/:id/status", s.handleSetStatus)

	api.GET("/export", s.handleExport)
	api.POST("/import", s.handleImport)
	api.GET("/export.csv", s.handleExportCSV)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	f := query.Filter{
		Search:      c.QueryParam("q"),
		Type:        c.QueryParam("type"),
		Category:    c.QueryParam("category"),
		Axis:        c.QueryParam("axis"),
		Territory:   c.QueryParam("territory"),
		DeadlineMin: c.QueryParam("deadline_min"),
		DeadlineMax: c.QueryParam("deadline_max"),
	}
	if v := c.QueryParam("urgent"); v != "" {
		f.UrgentOnly, _ = strconv.ParseBool(v)
	}
	if strings.EqualFold(c.QueryParam("sort"), "desc") {
		f.SortDesc = true
	}

	entries := s.Board.Query(f)
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": entries,
		"total":         len(entries),
	})
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	entry, ok := s.Board.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunity":    entry.Opportunity,
		"annotation":     entry.Annotation,
		"recommendation": pipeline.Recommend(entry.Annotation.Score),
	})
}

func (s *Server) handleGetMeta(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Board.Meta())
}

func (s *Server) handleGetPipeline(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"statuses": pipeline.Statuses})
}

// handleReload refreshes the dataset. A failed reload keeps the previous
// state; the error comes back as an advisory, not a fault.
func (s *Server) handleReload(c echo.Context) error {
	if err := s.Board.Reload(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"advisory": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"total":  len(s.Board.CurrentMergedView()),
	})
}

func (s *Server) handlePatchAnnotation(c echo.Context) error {
	var patch models.AnnotationPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	a, err := s.Board.PatchAnnotation(c.Param("id"), patch)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handlePatchScore(c echo.Context) error {
	var patch models.ScorePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	a, err := s.Board.PatchScore(c.Param("id"), patch)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"annotation":     a,
		"recommendation": pipeline.Recommend(a.Score),
	})
}

func (s *Server) handleMove(c echo.Context) error {
	var req struct {
		Direction int `json:"direction"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Direction != 1 && req.Direction != -1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "direction must be 1 or -1"})
	}
	a, err := s.Board.Move(c.Param("id"), req.Direction)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleSetStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	a, err := s.Board.SetStatus(c.Param("id"), req.Status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleExport(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Board.ExportSnapshot())
}

func (s *Server) handleImport(c echo.Context) error {
	blob, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := s.Board.ImportSnapshot(blob); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"total":  len(s.Board.CurrentMergedView()),
	})
}

func (s *Server) handleExportCSV(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="opportunities.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(s.Board.ExportCSV()))
}
