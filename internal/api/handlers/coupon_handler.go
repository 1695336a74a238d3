package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Cheertaboi/coupon-keeper/internal/models"
	"github.com/Cheertaboi/coupon-keeper/internal/service"
)

// --- Request / Response DTOs ---

type CreateCouponRequest = models.CouponInput

type CopyResponse struct {
	Copied bool   `json:"copied"`
	Code   string `json:"code"`
}

// Copier puts text on the clipboard and reports whether it worked.
type Copier interface {
	Copy(text string) bool
}

// --- Handler struct & constructor ---

type CouponHandler struct {
	service *service.CouponService
	copier  Copier
}

func NewCouponHandler(svc *service.CouponService, copier Copier) *CouponHandler {
	return &CouponHandler{
		service: svc,
		copier:  copier,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// --- Handlers ---

// ListCoupons handles GET /coupons
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Views(h.service.GetAll(r.Context())))
}

// CreateCoupon handles POST /coupons
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	c, err := h.service.Add(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCoupon) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed_create_coupon")
		return
	}
	writeJSON(w, http.StatusCreated, h.service.View(c))
}

// GetCoupon handles GET /coupons/{id}
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.View(c))
}

// DeleteCoupon handles DELETE /coupons/{id}
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyCode handles POST /coupons/{id}/copy
func (h *CouponHandler) CopyCode(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CopyResponse{Copied: h.copier.Copy(c.Code), Code: c.Code})
}

// Categories handles GET /coupons/categories
func (h *CouponHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.service.Categories(r.Context())
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Search handles GET /coupons/search?q=
func (h *CouponHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, h.service.Views(h.service.Search(r.Context(), q)))
}

// Expired handles GET /coupons/expired
func (h *CouponHandler) Expired(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Views(h.service.Expired(r.Context())))
}

// ExpiringSoon handles GET /coupons/expiring?days=
// days falls back to the configured window when missing or invalid.
func (h *CouponHandler) ExpiringSoon(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			days = d
		}
	}
	writeJSON(w, http.StatusOK, h.service.Views(h.service.ExpiringSoon(r.Context(), days)))
}
