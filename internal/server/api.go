//go:generate easyjson -all api.go

package server

// removeRequest is the body of POST /remove-watermark.
type removeRequest struct {
	ImageURL   string `json:"imageUrl"`
	OutputType string `json:"outputType"`
	// Detect skips removal when no overlay is detected.
	Detect bool `json:"detect"`
}

// base64Response is returned when outputType is "base64".
type base64Response struct {
	Image        string `json:"image"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ProcessingMS int64  `json:"processing_ms"`
	TotalMS      int64  `json:"total_ms"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}
