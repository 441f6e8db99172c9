// Package api exposes the client layer over HTTP to a local front-end.
// The gateway holds a single session, like the browser application it serves.
package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"klaso-client/internal/config"
	"klaso-client/internal/db"
	"klaso-client/internal/excel"
	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/internal/pull"
	"klaso-client/internal/report"
	"klaso-client/internal/repository"
	"klaso-client/internal/session"
	"klaso-client/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ExportProducer interface {
	EnqueueExportJob(ctx context.Context, job model.ExportJob) error
}

type ExportDownloader interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Pinger is a dependency reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type Dependencies struct {
	Session  *session.Service
	Repos    *repository.Set
	Ledger   db.Repository
	Producer ExportProducer
	Archive  ExportDownloader
	Checks   map[string]Pinger
}

type Handler struct {
	cfg      *config.Config
	session  *session.Service
	repos    *repository.Set
	preload  *pull.Service
	reports  *report.Assembler
	importer *excel.Importer
	ledger   db.Repository
	producer ExportProducer
	archive  ExportDownloader
	checks   map[string]Pinger
	log      zerolog.Logger
}

func NewHandler(cfg *config.Config, deps Dependencies) *Handler {
	repos := deps.Repos
	return &Handler{
		cfg:      cfg,
		session:  deps.Session,
		repos:    repos,
		preload:  pull.NewService(repos),
		reports:  report.NewAssembler(repos.Students, repos.Classrooms, repos.Grades, repos.Attendances),
		importer: excel.NewImporter(repos.Grades),
		ledger:   deps.Ledger,
		producer: deps.Producer,
		archive:  deps.Archive,
		checks:   deps.Checks,
		log:      logger.Get(),
	}
}

// bind decodes the JSON body into req and validates it.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	if err := validation.Struct(req); err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":        state,
		"service":       h.cfg.App.Name,
		"version":       h.cfg.App.Version,
		"authenticated": h.session.Holder().IsAuthenticated(),
		"dependencies":  deps,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info().Str("user_id", user.ID.String()).Msg("User logged in")
	c.JSON(http.StatusOK, gin.H{"user": user, "token": h.session.Holder().Credential()})
}

// Restore accepts a credential stored by the front-end, either as a bearer
// header or in the body.
func (h *Handler) Restore(c *gin.Context) {
	credential := bearerToken(c.GetHeader("Authorization"))
	if credential == "" {
		var body struct {
			Token string `json:"token"`
		}
		_ = c.ShouldBindJSON(&body)
		credential = body.Token
	}
	if credential == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credential"})
		return
	}

	user, err := h.session.Restore(c.Request.Context(), credential)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// bearerToken returns the token of a Bearer authorization header. Other
// schemes yield "".
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func (h *Handler) Logout(c *gin.Context) {
	h.session.Logout()
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.session.Holder().Require()
	if err != nil {
		h.respondError(c, err)
		return
	}

	claims := h.session.Holder().Claims()
	resp := gin.H{"user": user, "displayName": user.DisplayName()}
	if !claims.ExpiresAt.IsZero() {
		resp["expiresAt"] = claims.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.session.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.session.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.session.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
