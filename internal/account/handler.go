package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/middleware"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/respond"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/account", h.delete)
}

// delete removes the caller's data. Guests can wipe their own uploads; no
// login is required for that.
func (h *Handler) delete(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	userID := strings.TrimSpace(middleware.UserIDFromContext(c))
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing identity", nil)
		return
	}

	result, err := h.Svc.Delete(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete account data", nil)
		return
	}

	telemetry.Info("account.deleted", map[string]any{
		"user_id":         userID,
		"deleted_reports": result.DeletedReports,
		"deleted_user":    result.DeletedUser,
	})
	respond.JSON(c, http.StatusOK, result)
}
