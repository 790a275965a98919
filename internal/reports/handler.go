package reports

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/extract"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/middleware"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reports", h.upload)
	rg.POST("/reports/text", h.fromText)
	rg.GET("/reports", h.list)
	rg.GET("/reports/current", h.current)
	rg.GET("/reports/:id", h.get)
	rg.GET("/reports/:id/file", h.download)
	rg.POST("/reports/claim-guest", h.claimGuest)
}

type claimGuestRequest struct {
	GuestID string `json:"guestId"`
}

// claimGuest moves reports uploaded under a guest identity to the signed-in
// user after login.
func (h *Handler) claimGuest(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "login required to claim reports", nil)
			return
		}
	}

	var req claimGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.GuestID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "guestId is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	claimed, err := h.Svc.ClaimGuest(c.Request.Context(), "guest:"+strings.TrimSpace(req.GuestID), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to claim reports", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"claimed": claimed})
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	report, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(report))
}

type fromTextRequest struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
}

func (h *Handler) fromText(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req fromTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", nil)
		return
	}

	report, err := h.Svc.FromText(c.Request.Context(), userID, strings.TrimSpace(req.FileName), req.Text)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(report))
}

func (h *Handler) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, "unsupported_format", "only pdf, png, jpg, jpeg and txt uploads are supported", nil)
	case errors.Is(err, extract.ErrOCRUnavailable):
		respond.Error(c, http.StatusUnprocessableEntity, "ocr_unavailable", "image uploads require the OCR service; upload a PDF or use the text endpoint", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process report", nil)
	}
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	report, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(report))
}

// download streams the stored original upload back to its owner.
func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	rc, report, err := h.Svc.OpenFile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open report file", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	c.DataFromReader(http.StatusOK, report.SizeBytes, report.MimeType, rc, nil)
}

func (h *Handler) current(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	report, err := h.Svc.Current(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch report", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(report))
}

func (h *Handler) list(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	userReports, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list reports", nil)
		return
	}

	resp := make([]ReportSummary, 0, len(userReports))
	for _, report := range userReports {
		resp = append(resp, toSummary(report))
	}

	respond.JSON(c, http.StatusOK, resp)
}
