package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes bounds how much of a device reply is read. Receiver status
// pages are small; anything larger is truncated.
const maxBodyBytes = 64 * 1024

// HTTPAdapter sends commands to receivers that expose an HTTP control API.
type HTTPAdapter struct {
	client *http.Client
}

// NewHTTPAdapter creates an adapter with the given per-call timeout. Receivers
// are LAN devices expected to answer quickly, so the timeout should stay in
// the low seconds.
func NewHTTPAdapter(timeout time.Duration) *HTTPAdapter {
	return &HTTPAdapter{
		client: &http.Client{Timeout: timeout},
	}
}

// Send issues the declared method against the device. For GET the payload is
// appended to the endpoint as the query portion; for POST and PUT it becomes
// the request body with the declared content type.
func (adapter *HTTPAdapter) Send(ctx context.Context, req Request) (*Response, error) {
	target := fmt.Sprintf("http://%s%s", net.JoinHostPort(req.Host, strconv.Itoa(req.Port)), req.Endpoint)

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch method {
	case http.MethodGet:
		target += req.Payload
	case http.MethodPost, http.MethodPut:
		body = strings.NewReader(req.Payload)
	default:
		return nil, &Error{Kind: KindConnectFailed, Message: fmt.Sprintf("unsupported HTTP method %q", req.Method)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindConnectFailed, Message: err.Error()}
	}
	if body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/x-www-form-urlencoded"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := adapter.client.Do(httpReq)
	if err != nil {
		return nil, classifyHTTPError(err)
	}
	defer resp.Body.Close()

	reply, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTPError, Status: resp.StatusCode, Message: resp.Status}
	}

	return &Response{Status: resp.StatusCode, Body: string(reply)}, nil
}

func classifyHTTPError(err error) *Error {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "no response within timeout"}
	}
	if ctxErr := contextCause(err); ctxErr != nil {
		return ctxErr
	}
	return &Error{Kind: KindConnectFailed, Message: err.Error()}
}
