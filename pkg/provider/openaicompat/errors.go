package openaicompat

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// MapHTTPError converts a response with a non-2xx status code into a
// transport error carrying the status. It attempts to parse the body as a
// ChatErrorResponse to extract a descriptive message.
func MapHTTPError(name string, resp *http.Response) *api.Error {
	message := ExtractErrorMessage(resp.Body)
	if message == "" {
		switch {
		case resp.StatusCode == http.StatusBadRequest:
			message = "backend rejected the request"
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			message = "backend rejected the configured credentials"
		case resp.StatusCode == http.StatusNotFound:
			message = "backend resource not found"
		case resp.StatusCode == http.StatusTooManyRequests:
			message = "backend rate limit exceeded"
		case resp.StatusCode >= http.StatusInternalServerError:
			message = "backend server error"
		default:
			message = "unexpected backend response"
		}
	}
	return api.NewTransportError(name, resp.StatusCode, message, nil)
}

// MapNetworkError converts a connection-level failure (connection refused,
// timeout, DNS resolution) into a transport error without a status.
func MapNetworkError(name string, err error) *api.Error {
	return api.NewTransportError(name, 0, "backend connection failed: "+err.Error(), err)
}

// ExtractErrorMessage tries to parse the response body as a ChatErrorResponse
// and returns the error message if found. At most 4KiB of the body is read.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
