package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"vsh/internal/core"
	"vsh/internal/server/database"
	"vsh/internal/server/service"
)

// Handler contains the HTTP handlers for the vsh API.
type Handler struct {
	sessions     *service.SessionService
	images       *service.ImageService
	db           *database.DB
	historyLimit int
}

// NewHandler creates a new handler with the given service dependencies.
// historyLimit caps how many command records a single request may fetch.
func NewHandler(sessions *service.SessionService, images *service.ImageService, db *database.DB, historyLimit int) *Handler {
	return &Handler{sessions: sessions, images: images, db: db, historyLimit: historyLimit}
}

type createSessionRequest struct {
	ImageID string `json:"image_id"`
}

type execRequest struct {
	Line string `json:"line"`
}

// HandleCreateSession handles POST /api/sessions.
// Starts a new session, optionally on an uploaded image. The response
// carries the session token; it is never shown again.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	result, err := h.sessions.Create(c.Request().Context(), req.ImageID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// HandleExec handles POST /api/sessions/:id/commands.
// Runs one input line in the session. Command errors are reported
// inside the 200 response body, matching the shell's report-and-continue
// behavior; only session-level failures get error status codes.
func (h *Handler) HandleExec(c echo.Context) error {
	var req execRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	result, err := h.sessions.Exec(c.Request().Context(), c.Param("id"), bearerToken(c), req.Line)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// HandleGetSession handles GET /api/sessions/:id.
// Returns session metadata without requiring the token.
func (h *Handler) HandleGetSession(c echo.Context) error {
	info, err := h.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleHistory handles GET /api/sessions/:id/commands.
// Returns the session's recorded command lines in execution order.
func (h *Handler) HandleHistory(c echo.Context) error {
	limit := h.historyLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		if n < limit {
			limit = n
		}
	}

	entries, err := h.sessions.History(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"commands": entries})
}

// HandleCloseSession handles DELETE /api/sessions/:id.
// Ends the session without an exit command.
func (h *Handler) HandleCloseSession(c echo.Context) error {
	if err := h.sessions.Close(c.Request().Context(), c.Param("id"), bearerToken(c)); err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "session closed"})
}

// HandleUploadImage handles POST /api/images.
// Accepts a multipart form with a "file" field holding a ZIP image.
func (h *Handler) HandleUploadImage(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "file is required (use form field 'file')",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer src.Close()

	result, err := h.images.Upload(src, fileHeader.Size)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// HandleHealth handles GET /health.
// Returns the health status of the server, including database connectivity.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// HandleStats handles GET /api/stats.
// Returns aggregate server statistics.
func (h *Handler) HandleStats(c echo.Context) error {
	stats, err := h.sessions.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "failed to retrieve stats",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_sessions":  stats.TotalSessions,
		"active_sessions": stats.ActiveSessions,
		"total_commands":  stats.TotalCommands,
	})
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// mapServiceError translates service-layer errors into appropriate HTTP responses.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, service.ErrSessionEnded):
		return c.JSON(http.StatusGone, echo.Map{"error": "session has ended"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid session token"})
	case errors.Is(err, service.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
	case errors.Is(err, service.ErrImageTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
			"error": "image exceeds maximum allowed size",
		})
	case errors.Is(err, core.ErrInvalidImage):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or corrupt image"})
	case errors.Is(err, core.ErrDuplicateEntry):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image contains duplicate entries"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
