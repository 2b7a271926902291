package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/calendar"
	"github.com/existflow/semplan/internal/export"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
	"github.com/existflow/semplan/internal/store"
)

// maxImportSize bounds import request bodies
const maxImportSize = 10 << 20

type nameRequest struct {
	Name string `json:"name"`
}

type profilesResponse struct {
	Profiles []model.Profile `json:"profiles"`
	Active   string          `json:"active"`
}

func (s *Server) handleListProfiles(c echo.Context) error {
	return c.JSON(http.StatusOK, profilesResponse{
		Profiles: s.store.Profiles(),
		Active:   s.store.ActiveProfile().ID,
	})
}

func (s *Server) handleCreateProfile(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	p, err := s.store.CreateProfile(c.Request().Context(), req.Name)
	if err != nil {
		return s.profileError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleRenameProfile(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if err := s.store.RenameProfile(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return s.profileError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteProfile(c echo.Context) error {
	if err := s.store.DeleteProfile(c.Request().Context(), c.Param("id")); err != nil {
		return s.profileError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSwitchProfile(c echo.Context) error {
	if err := s.store.SwitchProfile(c.Request().Context(), c.Param("id")); err != nil {
		return s.profileError(c, err)
	}
	return c.JSON(http.StatusOK, s.store.ActiveProfile())
}

func (s *Server) profileError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrUnknownProfile):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmptyName):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDefaultProfile), errors.Is(err, store.ErrLastProfile):
		return fail(c, http.StatusConflict, err.Error())
	default:
		s.log.Error("Profile operation failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "storage error")
	}
}

func (s *Server) handleGetData(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Data())
}

func (s *Server) handleImport(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize))
	if err != nil {
		return fail(c, http.StatusBadRequest, "failed to read body")
	}
	data, err := export.ParseImport(body)
	if err != nil {
		return fail(c, http.StatusBadRequest, export.ErrInvalidImport.Error())
	}
	if err := s.store.ReplaceData(c.Request().Context(), data); err != nil {
		return fail(c, http.StatusInsufficientStorage, err.Error())
	}
	s.log.Info("Data imported", zap.Int("semesters", len(data.Semesters)))
	return c.JSON(http.StatusOK, s.store.Data())
}

func (s *Server) handleUpdateSettings(c echo.Context) error {
	var patch model.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	if err := s.services.Settings.Update(patch); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s.store.Settings())
}

type semestersResponse struct {
	Semesters []model.Semester `json:"semesters"`
	Current   string           `json:"current"`
}

func (s *Server) handleListSemesters(c echo.Context) error {
	return c.JSON(http.StatusOK, semestersResponse{
		Semesters: s.services.Semesters.List(),
		Current:   s.store.CurrentSemesterID(),
	})
}

func (s *Server) handleCreateSemester(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	sem, err := s.services.Semesters.Create(req.Name)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sem)
}

func (s *Server) handleDeleteSemester(c echo.Context) error {
	if !s.services.Semesters.Delete(c.Param("id")) {
		return fail(c, http.StatusNotFound, "semester not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSelectSemester(c echo.Context) error {
	if !s.services.Semesters.Select(c.Param("id")) {
		return fail(c, http.StatusNotFound, "semester not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateCalendar(c echo.Context) error {
	var cs model.CalendarSettings
	if err := c.Bind(&cs); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request")
	}
	err := s.services.Semesters.UpdateCalendarSettings(c.Param("id"), cs)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, "semester not found")
	case err != nil:
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// handleWeek returns the week view of the current semester. An optional
// date=YYYY-MM-DD picks another week.
func (s *Server) handleWeek(c echo.Context) error {
	sem, ok := s.store.CurrentSemester()
	if !ok {
		return fail(c, http.StatusNotFound, service.ErrNoSemester.Error())
	}
	now := s.now()
	if q := c.QueryParam("date"); q != "" {
		d, ok := model.ParseDate(q)
		if !ok {
			return fail(c, http.StatusBadRequest, service.ErrInvalidDate.Error())
		}
		now = d
	}
	return c.JSON(http.StatusOK, calendar.BuildWeek(sem, now))
}

func (s *Server) handleHomework(c echo.Context) error {
	return c.JSON(http.StatusOK, s.services.Homework.List(s.now()))
}

func (s *Server) handleToggleHomework(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid index")
	}
	if !s.services.Homework.Toggle(c.Param("id"), index) {
		return fail(c, http.StatusNotFound, "homework not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleExportJSON(c echo.Context) error {
	b, err := export.JSON(s.store.Data())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="semplan.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, b)
}

func (s *Server) handleExportICS(c echo.Context) error {
	sem, ok := s.store.CurrentSemester()
	if !ok {
		return fail(c, http.StatusNotFound, service.ErrNoSemester.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="semplan.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", export.ICS(sem, s.now()))
}

func (s *Server) handleBackup(c echo.Context) error {
	b, err := s.store.Backup(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}
