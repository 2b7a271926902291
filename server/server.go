// Package server exposes the planner over a local HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/service"
	"github.com/existflow/semplan/internal/store"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Now func() time.Time
}

// Server is the planner API server
type Server struct {
	store    *store.Store
	services *service.Services
	log      *zap.Logger
	now      func() time.Time
	echo     *echo.Echo
}

// New creates a new server over st
func New(st *store.Store, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		store:    st,
		services: service.New(st, log),
		log:      log,
		now:      opts.Now,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(s.originGuard)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: localOrigin,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	api.GET("/profiles", s.handleListProfiles)
	api.POST("/profiles", s.handleCreateProfile)
	api.PUT("/profiles/:id", s.handleRenameProfile)
	api.DELETE("/profiles/:id", s.handleDeleteProfile)
	api.POST("/profiles/:id/activate", s.handleSwitchProfile)

	api.GET("/data", s.handleGetData)
	api.PUT("/data", s.handleImport)
	api.PATCH("/settings", s.handleUpdateSettings)

	api.GET("/semesters", s.handleListSemesters)
	api.POST("/semesters", s.handleCreateSemester)
	api.DELETE("/semesters/:id", s.handleDeleteSemester)
	api.POST("/semesters/:id/select", s.handleSelectSemester)
	api.PUT("/semesters/:id/calendar", s.handleUpdateCalendar)

	api.GET("/week", s.handleWeek)
	api.GET("/homework", s.handleHomework)
	api.POST("/courses/:id/homework/:index/toggle", s.handleToggleHomework)

	api.GET("/export.json", s.handleExportJSON)
	api.GET("/export.ics", s.handleExportICS)
	api.GET("/backup", s.handleBackup)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.Info("API server listening", zap.String("addr", addr))
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and flushes pending writes
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.store.SaveNow(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
