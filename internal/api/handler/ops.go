package handler

import (
	"net/http"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	providers map[string]*resilience.Client
}

// NewOpsHandler creates an OpsHandler. providers maps provider names to
// their resilient clients for breaker-state reporting.
func NewOpsHandler(version, buildTime string, providers map[string]*resilience.Client) *OpsHandler {
	return &OpsHandler{version: version, buildTime: buildTime, providers: providers}
}

type providerStatus struct {
	CircuitState string `json:"circuitState"`
	Requests     uint32 `json:"requests"`
	Failures     uint32 `json:"failures"`
}

type healthResponse struct {
	Status    string                    `json:"status"`
	Version   string                    `json:"version"`
	BuildTime string                    `json:"buildTime"`
	Providers map[string]providerStatus `json:"providers,omitempty"`
}

// HealthCheck handles GET /v1/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	providers := make(map[string]providerStatus, len(h.providers))
	for name, client := range h.providers {
		counts := client.Counts()
		providers[name] = providerStatus{
			CircuitState: client.State().String(),
			Requests:     counts.Requests,
			Failures:     counts.TotalFailures,
		}
	}

	response.JSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		BuildTime: h.buildTime,
		Providers: providers,
	})
}
