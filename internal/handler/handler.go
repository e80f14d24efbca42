// Package handler exposes the analysis service over HTTP
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"sentinel/internal/domain"
	"sentinel/internal/service"
)

// APIHandler handles API requests
type APIHandler struct {
	analyzer *service.Analyzer
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(analyzer *service.Analyzer) *APIHandler {
	return &APIHandler{analyzer: analyzer}
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetSummary returns the latest health summary, running a cycle first
// if none exists yet
func (h *APIHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyzer.LatestOrRun(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrAnalysisInProgress) {
			h.writeError(w, "Analysis in progress", "First analysis cycle has not completed yet", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Failed to get summary: %v", err)
		h.writeError(w, "Failed to get summary", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, result.Summary, http.StatusOK)
}

// GetFullAnalysis returns the latest composite analysis result
func (h *APIHandler) GetFullAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyzer.LatestOrRun(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrAnalysisInProgress) {
			h.writeError(w, "Analysis in progress", "First analysis cycle has not completed yet", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Failed to get analysis: %v", err)
		h.writeError(w, "Failed to get analysis", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// TriggerAnalysis starts a cycle in the background and returns 202
func (h *APIHandler) TriggerAnalysis(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := h.analyzer.Run(ctx); err != nil && !errors.Is(err, service.ErrAnalysisInProgress) {
			log.Printf("Triggered analysis failed: %v", err)
		}
	}()

	h.writeJSON(w, map[string]string{"status": "analysis started"}, http.StatusAccepted)
}

// ListDevices returns the latest roster, optionally filtered by status
func (h *APIHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzer.Latest()
	if !ok {
		h.writeJSON(w, []domain.Device{}, http.StatusOK)
		return
	}

	status := r.URL.Query().Get("status")
	var devices []domain.Device
	if status != "" {
		devices = result.Roster.ByStatus(domain.DeviceStatus(status))
	} else {
		for _, d := range result.Roster.Devices {
			devices = append(devices, d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].IP < devices[j].IP })

	if devices == nil {
		devices = []domain.Device{}
	}
	h.writeJSON(w, devices, http.StatusOK)
}

// OfflineDevices returns the devices currently classified offline
func (h *APIHandler) OfflineDevices(w http.ResponseWriter, r *http.Request) {
	type offlineReport struct {
		Count   int             `json:"count"`
		Devices []domain.Device `json:"devices"`
	}

	report := offlineReport{Devices: []domain.Device{}}
	if result, ok := h.analyzer.Latest(); ok {
		if offline := result.Roster.ByStatus(domain.DeviceStatusOffline); offline != nil {
			sort.Slice(offline, func(i, j int) bool { return offline[i].IP < offline[j].IP })
			report.Devices = offline
		}
		report.Count = len(report.Devices)
	}

	h.writeJSON(w, report, http.StatusOK)
}

// GetWifiStats returns the latest wifi client stats
func (h *APIHandler) GetWifiStats(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzer.Latest()
	if !ok {
		h.writeJSON(w, domain.WifiStats{}, http.StatusOK)
		return
	}
	h.writeJSON(w, result.WifiStats, http.StatusOK)
}

// ScanWifi runs a wifi environment scan and returns the scored report
func (h *APIHandler) ScanWifi(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyzer.ScanWifi(r.Context())
	if err != nil {
		log.Printf("Wifi scan failed: %v", err)
		h.writeError(w, "Wifi scan failed", err.Error(), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, report, http.StatusOK)
}

// GetChannels runs a scan and returns per-channel stats for one band
func (h *APIHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyzer.ScanWifi(r.Context())
	if err != nil {
		log.Printf("Wifi scan failed: %v", err)
		h.writeError(w, "Wifi scan failed", err.Error(), http.StatusBadGateway)
		return
	}

	band := r.URL.Query().Get("band")
	if band == "" {
		h.writeJSON(w, report.Channels, http.StatusOK)
		return
	}

	switch domain.Band(band) {
	case domain.Band2G, domain.Band5G, domain.Band6G:
	default:
		h.writeError(w, "Unknown band", "band must be one of 2.4GHz, 5GHz, 6GHz", http.StatusBadRequest)
		return
	}

	stats := report.Channels[domain.Band(band)]
	if stats == nil {
		stats = []domain.ChannelStat{}
	}
	h.writeJSON(w, stats, http.StatusOK)
}

// GetBandwidth returns the latest bandwidth sample
func (h *APIHandler) GetBandwidth(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzer.Latest()
	if !ok {
		h.writeJSON(w, domain.BandwidthSample{}, http.StatusOK)
		return
	}
	h.writeJSON(w, result.Bandwidth, http.StatusOK)
}

// GetTrends returns metric trends over the requested window
func (h *APIHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, "Invalid hours parameter", err.Error(), http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	h.writeJSON(w, h.analyzer.Trends(hours), http.StatusOK)
}

// GetIssues returns the issues from the latest cycle. Before the first
// cycle completes the last persisted issues are served instead.
func (h *APIHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	result, ok := h.analyzer.Latest()
	if ok {
		h.writeJSON(w, result.Issues, http.StatusOK)
		return
	}

	issues, err := h.analyzer.PersistedIssues(r.Context())
	if err != nil {
		log.Printf("Failed to load persisted issues: %v", err)
		issues = nil
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	h.writeJSON(w, issues, http.StatusOK)
}

// Healthz is the liveness endpoint
func (h *APIHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
