package dtos

type HealthResponse struct {
	Status string           `json:"status"`
	Queues map[string]int64 `json:"queues,omitempty"`
}
