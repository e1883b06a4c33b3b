package dto

// ErrorResponse is the failure body of every relay endpoint. Raw carries the
// unparsed model output when the failure came from it.
type ErrorResponse struct {
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}
