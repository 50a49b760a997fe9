package dto

import "time"

// BasicResponse is the envelope of every non-payload reply. Details carries
// the notice shown to the user; Field names the rejected input, if any.
type BasicResponse struct {
	Ok        bool      `json:"ok"`
	Details   string    `json:"details"`
	Field     string    `json:"field,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBasicResponse(ok bool, details string) BasicResponse {
	return BasicResponse{
		Ok:        ok,
		Details:   details,
		Timestamp: time.Now(),
	}
}

func NewFieldError(field string, details string) BasicResponse {
	resp := NewBasicResponse(false, details)
	resp.Field = field
	return resp
}
