package server

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// requestLogger logs every request with its outcome
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", res.Status),
			zap.Int64("size", res.Size),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}

		switch {
		case res.Status >= 500:
			s.log.Error("HTTP request failed", fields...)
		case res.Status >= 400:
			s.log.Warn("HTTP client error", fields...)
		default:
			s.log.Info("HTTP request", fields...)
		}
		return nil
	}
}

// localOrigin reports whether a browser origin is served from this machine
func localOrigin(origin string) (bool, error) {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false, nil
	}
	switch host := u.Hostname(); host {
	case "localhost":
		return true, nil
	default:
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback(), nil
	}
}

// originGuard refuses browser requests coming from foreign pages.
// Requests without an Origin header (CLI, curl) pass through.
func (s *Server) originGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		origin := c.Request().Header.Get(echo.HeaderOrigin)
		if origin == "" {
			return next(c)
		}
		if ok, _ := localOrigin(origin); !ok {
			s.log.Warn("Rejected cross-origin request", zap.String("origin", origin))
			return fail(c, http.StatusForbidden, "origin not allowed")
		}
		return next(c)
	}
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}
