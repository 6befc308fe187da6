package status

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

const sampleLiteStatus = `<?xml version="1.0" encoding="utf-8"?>
<item>
<FriendlyName><value>Living Room</value></FriendlyName>
<Power><value>ON</value></Power>
<InputFuncSelect><value>SAT/CBL</value></InputFuncSelect>
<MasterVolume><value>-40.5</value></MasterVolume>
<Mute><value>off</value></Mute>
</item>`

func TestParse(t *testing.T) {
	st, err := Parse([]byte(sampleLiteStatus))
	require.NoError(t, err)

	assert.Equal(t, "ON", st.Power)
	assert.Equal(t, "SAT/CBL", st.Input)
	assert.Equal(t, -40.5, st.VolumeDB)
	assert.False(t, st.Mute)
	assert.Equal(t, "Living Room", st.FriendlyName)
}

func TestParse_VolumeAtFloor(t *testing.T) {
	doc := `<item><Power><value>ON</value></Power><MasterVolume><value>--</value></MasterVolume><Mute><value>on</value></Mute></item>`
	st, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, float64(-80), st.VolumeDB)
	assert.True(t, st.Mute)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("not xml at all <"))
	assert.Error(t, err)
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Endpoint {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, sampleLiteStatus)
	}))
	defer server.Close()

	host, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, _ := strconv.Atoi(portStr)

	client := NewClient(2 * time.Second)
	st, err := client.Fetch(context.Background(), host, port)
	require.NoError(t, err)
	assert.Equal(t, "ON", st.Power)
}

func TestClient_FetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	host, portStr, _ := net.SplitHostPort(server.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)

	client := NewClient(2 * time.Second)
	_, err := client.Fetch(context.Background(), host, port)
	assert.Error(t, err)
}
