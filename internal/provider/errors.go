package provider

import "fmt"

// UpstreamError carries the HTTP status and response body of a failed or
// malformed provider response.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider unreachable: %s", body)
	}
	return fmt.Sprintf("provider responded %d: %s", e.StatusCode, body)
}
