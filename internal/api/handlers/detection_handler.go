package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Cheertaboi/coupon-keeper/internal/detection"
	"github.com/Cheertaboi/coupon-keeper/internal/models"
	"github.com/Cheertaboi/coupon-keeper/internal/monitor"
)

type ScanRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
}

type SimulateRequest struct {
	URL string `json:"url"`
}

type ScanResponse struct {
	Detected []models.DetectedCouponData `json:"detected"`
}

type MonitorStatus struct {
	Running bool `json:"running"`
	Enabled bool `json:"enabled"`
}

type DetectionHandler struct {
	engine   *detection.Engine
	settings *detection.SettingsStore
	source   detection.PageSource
	monitor  *monitor.Monitor
	ingest   monitor.IngestFunc
	// monitor loops outlive the request that starts them
	baseCtx context.Context
	log     zerolog.Logger
}

func NewDetectionHandler(
	baseCtx context.Context,
	engine *detection.Engine,
	settings *detection.SettingsStore,
	source detection.PageSource,
	mon *monitor.Monitor,
	ingest monitor.IngestFunc,
	log zerolog.Logger,
) *DetectionHandler {
	return &DetectionHandler{
		engine:   engine,
		settings: settings,
		source:   source,
		monitor:  mon,
		ingest:   ingest,
		baseCtx:  baseCtx,
		log:      log.With().Str("component", "detection_handler").Logger(),
	}
}

func scanResponse(detected []models.DetectedCouponData) ScanResponse {
	if detected == nil {
		detected = []models.DetectedCouponData{}
	}
	return ScanResponse{Detected: detected}
}

// Scan handles POST /detection/scan
func (h *DetectionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	detected := h.engine.Scan(req.Content, req.URL, h.settings.Snapshot(), req.Title)
	writeJSON(w, http.StatusOK, scanResponse(detected))
}

// Simulate handles POST /detection/simulate
// scans the simulated page for a URL without ingesting anything
func (h *DetectionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	page, err := h.source.Fetch(r.Context(), req.URL)
	if err != nil {
		h.log.Warn().Err(err).Str("url", req.URL).Msg("simulated fetch failed")
		writeError(w, http.StatusBadGateway, "fetch_failed")
		return
	}
	detected := h.engine.Scan(page.Content, req.URL, h.settings.Snapshot(), page.Title)
	writeJSON(w, http.StatusOK, scanResponse(detected))
}

// GetSettings handles GET /detection/settings
func (h *DetectionHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Snapshot())
}

// ReplaceSettings handles PUT /detection/settings
func (h *DetectionHandler) ReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var req models.AutoDetectionSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	updated, err := h.settings.Replace(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SetEnabled handles POST /detection/settings/enabled {"enabled": bool}
func (h *DetectionHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled required")
		return
	}
	writeJSON(w, http.StatusOK, h.settings.SetEnabled(*req.Enabled))
}

// SetSensitivity handles POST /detection/settings/sensitivity {"sensitivity": "low|medium|high"}
func (h *DetectionHandler) SetSensitivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sensitivity models.Sensitivity `json:"sensitivity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	updated, err := h.settings.SetSensitivity(req.Sensitivity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DetectionHandler) AddTrusted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.AddTrustedDomain(chi.URLParam(r, "domain")))
}

func (h *DetectionHandler) RemoveTrusted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.RemoveTrustedDomain(chi.URLParam(r, "domain")))
}

func (h *DetectionHandler) AddBlacklisted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.AddBlacklistedDomain(chi.URLParam(r, "domain")))
}

func (h *DetectionHandler) RemoveBlacklisted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.RemoveBlacklistedDomain(chi.URLParam(r, "domain")))
}

// MonitorStatus handles GET /detection/monitor
func (h *DetectionHandler) MonitorStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// StartMonitor handles POST /detection/monitor/start
// restarting replaces the running loop
func (h *DetectionHandler) StartMonitor(w http.ResponseWriter, r *http.Request) {
	h.monitor.Start(h.baseCtx, h.ingest)
	writeJSON(w, http.StatusOK, h.status())
}

// StopMonitor handles POST /detection/monitor/stop
func (h *DetectionHandler) StopMonitor(w http.ResponseWriter, r *http.Request) {
	h.monitor.Stop()
	writeJSON(w, http.StatusOK, h.status())
}

func (h *DetectionHandler) status() MonitorStatus {
	return MonitorStatus{Running: h.monitor.Running(), Enabled: h.settings.Enabled()}
}
