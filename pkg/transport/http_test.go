package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestHTTPAdapter_GetAppendsQuery(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		io.WriteString(w, "OK")
	}))
	defer server.Close()
	host, port := splitAddr(t, server.Listener.Addr().String())

	adapter := NewHTTPAdapter(2 * time.Second)
	resp, err := adapter.Send(context.Background(), Request{
		Host:     host,
		Port:     port,
		Method:   "GET",
		Endpoint: "/goform/formiPhoneAppDirect.xml",
		Payload:  "?MV50",
	})

	require.NoError(t, err)
	assert.Equal(t, "/goform/formiPhoneAppDirect.xml?MV50", gotURL)
	assert.Equal(t, "OK", resp.Body)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestHTTPAdapter_PostSendsBody(t *testing.T) {
	var gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()
	host, port := splitAddr(t, server.Listener.Addr().String())

	adapter := NewHTTPAdapter(2 * time.Second)
	_, err := adapter.Send(context.Background(), Request{
		Host:        host,
		Port:        port,
		Method:      "POST",
		Endpoint:    "/command",
		Payload:     "<Zone><Power>ON</Power></Zone>",
		ContentType: "application/xml",
	})

	require.NoError(t, err)
	assert.Equal(t, "<Zone><Power>ON</Power></Zone>", gotBody)
	assert.Equal(t, "application/xml", gotContentType)
}

func TestHTTPAdapter_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	host, port := splitAddr(t, server.Listener.Addr().String())

	adapter := NewHTTPAdapter(2 * time.Second)
	_, err := adapter.Send(context.Background(), Request{Host: host, Port: port, Method: "GET", Endpoint: "/"})

	var trErr *Error
	assert.ErrorAs(t, err, &trErr)
	assert.Equal(t, KindHTTPError, trErr.Kind)
	assert.Equal(t, http.StatusForbidden, trErr.Status)
}

func TestHTTPAdapter_ConnectionRefused(t *testing.T) {
	// Grab a port that is definitely closed.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port := splitAddr(t, listener.Addr().String())
	listener.Close()

	adapter := NewHTTPAdapter(2 * time.Second)
	_, err = adapter.Send(context.Background(), Request{Host: host, Port: port, Method: "GET", Endpoint: "/"})

	var trErr *Error
	assert.ErrorAs(t, err, &trErr)
	assert.Equal(t, KindConnectFailed, trErr.Kind)
}

func TestHTTPAdapter_TimeoutBounded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)
	host, port := splitAddr(t, server.Listener.Addr().String())

	adapter := NewHTTPAdapter(200 * time.Millisecond)

	start := time.Now()
	_, err := adapter.Send(context.Background(), Request{Host: host, Port: port, Method: "GET", Endpoint: "/"})
	elapsed := time.Since(start)

	var trErr *Error
	assert.ErrorAs(t, err, &trErr)
	assert.Equal(t, KindTimeout, trErr.Kind)
	assert.Less(t, elapsed, 2*time.Second, "timeout must bound the call")
}

func TestHTTPAdapter_UnsupportedMethod(t *testing.T) {
	adapter := NewHTTPAdapter(time.Second)
	_, err := adapter.Send(context.Background(), Request{Host: "127.0.0.1", Port: 80, Method: "DELETE"})

	var trErr *Error
	assert.ErrorAs(t, err, &trErr)
	assert.Equal(t, KindConnectFailed, trErr.Kind)
}
