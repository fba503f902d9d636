package in

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	hubin "lectern/internal/modules/hub/port/in"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
	"lectern/internal/platform/wire"
)

const userKey = "hub.user"

// Options configure the hub HTTP surface. An empty Token leaves every route
// open and attributes requests to User.
type Options struct {
	Token  string
	User   string
	Logger *logger.Logger
}

type HTTPHandler struct {
	usecase  hubin.Usecase
	opts     Options
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewHTTPHandler(usecase hubin.Usecase, opts Options) *HTTPHandler {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	if opts.User == "" {
		opts.User = "reader"
	}
	return &HTTPHandler{
		usecase: usecase,
		opts:    opts,
		log:     log,
		upgrader: websocket.Upgrader{
			// Clients are native apps, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine serving the hub API.
func (h *HTTPHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", h.health)

	api := router.Group("/api/v1")
	api.Use(h.authenticate)
	api.GET("/me", h.me)
	api.GET("/sessions", h.listSessions)
	api.POST("/sessions/batch", h.applySessions)
	api.GET("/progress", h.listProgress)
	api.POST("/progress/batch", h.applyProgress)
	api.GET("/presence", h.presence)
	api.GET("/presence/current", h.currentPresence)
	return router
}

func (h *HTTPHandler) authenticate(c *gin.Context) {
	if h.opts.Token != "" {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.opts.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}
	c.Set(userKey, h.opts.User)
	c.Next()
}

func (h *HTTPHandler) health(c *gin.Context) {
	if err := h.usecase.Health(c.Request.Context()); err != nil {
		h.log.Error("hub: health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, wire.Me{User: c.GetString(userKey)})
}

func (h *HTTPHandler) listSessions(c *gin.Context) {
	sessions, err := h.usecase.ListSessions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.SessionBatch{Sessions: sessions})
}

func (h *HTTPHandler) applySessions(c *gin.Context) {
	var batch wire.SessionBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	canonical, err := h.usecase.ApplySessions(c.Request.Context(), batch.Sessions)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.SessionBatch{Sessions: canonical})
}

func (h *HTTPHandler) listProgress(c *gin.Context) {
	progress, err := h.usecase.ListProgress(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.ProgressBatch{Progress: progress})
}

func (h *HTTPHandler) applyProgress(c *gin.Context) {
	var batch wire.ProgressBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	canonical, err := h.usecase.ApplyProgress(c.Request.Context(), batch.Progress)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.ProgressBatch{Progress: canonical})
}

// presence upgrades to a websocket and records every presence frame the
// client sends until it disconnects.
func (h *HTTPHandler) presence(c *gin.Context) {
	user := c.GetString(userKey)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("hub: presence upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	h.log.Debug("hub: presence connected", "user", user, "remote", c.Request.RemoteAddr)

	ctx := c.Request.Context()
	for {
		var frame wire.Presence
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("hub: presence read ended", "user", user, "error", err)
			}
			return
		}
		if frame.Type != wire.FramePresence {
			continue
		}
		if err := h.usecase.RecordPresence(ctx, user, frame); err != nil {
			h.log.Warn("hub: presence not recorded", "user", user, "error", err)
		}
	}
}

func (h *HTTPHandler) currentPresence(c *gin.Context) {
	presence, err := h.usecase.CurrentPresence(c.Request.Context(), c.GetString(userKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, presence)
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.log.Error("hub: request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
