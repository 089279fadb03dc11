package dto

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerRunRequest starts an ad-hoc analysis run over HTTP.
type TriggerRunRequest struct {
	Mode         string `json:"mode"`
	Topic        string `json:"topic,omitempty"`
	LookbackDays int    `json:"lookback_days,omitempty"`
}
