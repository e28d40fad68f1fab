package handlers

import (
	"net/http"
	"time"

	"github.com/schoolms/sms-gateway/internal/database"
)

type HealthHandler struct {
	dbEnabled bool
}

func NewHealthHandler(dbEnabled bool) *HealthHandler {
	return &HealthHandler{dbEnabled: dbEnabled}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	if h.dbEnabled {
		if !databaseHealthy() {
			response.Services["database"] = "unhealthy"
			response.Status = "degraded"
		} else {
			response.Services["database"] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.dbEnabled && !databaseHealthy() {
		http.Error(w, "Service not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func databaseHealthy() bool {
	if database.DB == nil {
		return false
	}
	sqlDB, err := database.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}
