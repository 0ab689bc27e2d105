// Package httpapi is the HTTP adapter: the read-side dictionary and
// menu routes, wired through github.com/labstack/echo/v4 with a CORS
// allow-list and a uniform JSON error envelope.
package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/theleeeo/dictionary-indexer/internal/config"
	"github.com/theleeeo/dictionary-indexer/internal/query"
)

// SystemInfo is the payload for GET /, /api, /api/dictionary/system-info.
type SystemInfo struct {
	Version        string   `json:"version"`
	IsKafkaEnabled bool     `json:"is_kafka_enabled"`
	KafkaQueues    []string `json:"kafka_queues"`
}

// Handler wires the query services to the HTTP routes.
type Handler struct {
	svc     *query.Service
	info    SystemInfo
	logger  *zap.Logger
	dictCfg *config.DictionaryConfig
}

func NewHandler(svc *query.Service, info SystemInfo, dictCfg *config.DictionaryConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dictCfg == nil {
		dictCfg = &config.DictionaryConfig{}
	}
	return &Handler{svc: svc, info: info, logger: logger, dictCfg: dictCfg}
}

// NewEcho builds a ready-to-serve *echo.Echo: CORS allow-list, the JSON
// error envelope, and every route registered.
func NewEcho(h *Handler, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = h.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{
			"Access-Control-Request-Method",
			"Access-Control-Request-Headers",
			echo.HeaderAuthorization,
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.Info("http request",
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	h.Register(e)
	return e
}

// Register attaches every served route.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.systemInfo)
	e.GET("/api", h.systemInfo)
	e.GET("/api/dictionary/system-info", h.systemInfo)

	e.GET("/api/security/menus", h.menus)

	e.GET("/api/dictionary/browsers", h.listBrowsers)
	e.GET("/api/dictionary/browsers/:id", h.getBrowser)
	e.GET("/api/dictionary/forms", h.listForms)
	e.GET("/api/dictionary/forms/:id", h.getForm)
	e.GET("/api/dictionary/processes", h.listProcesses)
	e.GET("/api/dictionary/processes/:id", h.getProcess)
	e.GET("/api/dictionary/windows", h.listWindows)
	e.GET("/api/dictionary/windows/:id", h.getWindow)
}

func (h *Handler) systemInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.info)
}

// errorHandler renders every error as the JSON envelope
// {status, message}. Logical errors are not differentiated into
// 400/404: a validation failure, a missing index, and a missing
// document all surface as 500, keeping the envelope uniform for
// clients.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if status >= 500 {
		h.logger.Warn("request failed", zap.Error(err), zap.String("path", c.Path()))
	}

	_ = c.JSON(status, map[string]any{
		"status":  status,
		"message": message,
	})
}

// asHTTPError maps the core's typed error taxonomy
// (apperr.ValidationError, apperr.IndexNotFound, apperr.NotFound,
// apperr.BackendError, apperr.DecodeError) onto the uniform 500
// envelope; no 4xx discrimination happens at this layer.
func asHTTPError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func queryParams(c echo.Context) query.Params {
	return query.Params{
		Language:       c.QueryParam("language"),
		ClientUUID:     c.QueryParam("client_id"),
		RoleUUID:       c.QueryParam("role_id"),
		UserUUID:       c.QueryParam("user_id"),
		DictionaryCode: c.QueryParam("dictionary_code"),
		Term:           c.QueryParam("search_value"),
		ID:             c.QueryParam("id"),
	}
}

// checkDictionaryCode rejects a dictionary_code query parameter the
// on-disk table (config.DictionaryConfig) doesn't recognize, surfaced
// through the same uniform 500 envelope every other validation failure
// uses.
func (h *Handler) checkDictionaryCode(p query.Params) error {
	if !h.dictCfg.Known(p.DictionaryCode) {
		return asHTTPError(fmt.Errorf("unrecognized dictionary_code %q", p.DictionaryCode))
	}
	return nil
}
