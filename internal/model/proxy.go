// Package model defines the types exchanged with the web front-end.
package model

// ProxyRequest is the argument object the front-end passes to the
// http_proxy bridge command.
type ProxyRequest struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	// Headers is a JSON-serialized object of string to string, not a map.
	Headers *string `json:"headers,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// ProxyResponse is the result handed back to the front-end as a JSON string.
// Header keys are lower-case wire names.
type ProxyResponse struct {
	Status  uint16            `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}
