package guardianapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the Guardian backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError prefers the FastAPI "detail" field as the message.
func newAPIError(resp *resty.Response) *APIError {
	e := &APIError{
		StatusCode: resp.StatusCode(),
		Message:    fmt.Sprintf("request failed with status code %d", resp.StatusCode()),
	}
	if req := resp.Request; req != nil {
		e.Method = req.Method
		e.Path = req.URL
	}
	if detail := detailMessage(resp.Body()); detail != "" {
		e.Message = detail
	}
	return e
}

func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			return strings.TrimSpace(s)
		}
		// 422 validation errors: [{"loc": [...], "msg": "..."}]
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 {
			return strings.TrimSpace(items[0].Msg)
		}
	}
	return strings.TrimSpace(payload.Error)
}
