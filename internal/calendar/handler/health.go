package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"

	httputil "hostbook/pkg/http"
	"hostbook/pkg/logger"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Calendar string `json:"calendar,omitempty"`
}

type HealthHandler struct {
	reservationsDir string
	log             *logger.Logger
}

func NewHealthHandler(reservationsDir string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		reservationsDir: reservationsDir,
		log:             log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

// Ready reports whether the calendar directory can be read.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.checkCalendarDir(); err != nil {
		h.log.Error("Calendar health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unavailable",
			Calendar: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		Calendar: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) checkCalendarDir() error {
	if _, err := os.ReadDir(h.reservationsDir); err != nil {
		return fmt.Errorf("read calendar directory: %w", err)
	}
	return nil
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
