package dtos

// HealthCheckResponse is returned by GET /health.
type HealthCheckResponse struct {
	Status string `json:"status"`
}
