package api

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"avrctl/pkg/command"
	"avrctl/pkg/config"
	"avrctl/pkg/database"
	"avrctl/pkg/seed"
	"avrctl/pkg/status"
	"avrctl/pkg/transport"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubDiscovery struct{ triggered int }

func (s *stubDiscovery) Trigger() { s.triggered++ }

func newTestRouter(t *testing.T) (*gin.Engine, *stubDiscovery) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, seed.Run(db))

	store := database.NewCommandStore(db)
	executor := command.NewExecutor(
		store,
		transport.NewHTTPAdapter(2*time.Second),
		transport.NewSocketAdapter(time.Second, time.Second),
		0,
	)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		JWTSecret:            "test-secret",
		AdminUser:            "admin",
		AdminHash:            string(hash),
		SessionDurationHours: 1,
	}

	disc := &stubDiscovery{}
	r := gin.New()
	Register(r, Deps{
		DB:        db,
		Auth:      Auth(cfg),
		Execute:   NewExecuteHandler(executor, store, status.NewClient(time.Second)),
		Discovery: disc,
	})
	return r, disc
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExecuteRoute_PowerOn(t *testing.T) {
	var gotQuery string
	device := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
	}))
	defer device.Close()
	host, portStr, _ := net.SplitHostPort(device.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)

	router, _ := newTestRouter(t)
	w := postJSON(t, router, "/api/v1/execute", gin.H{
		"receiver_model": "AVR-X2300W",
		"action_name":    "power_on",
		"host":           host,
		"port":           port,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cmd0=PutZone_OnOff/ON", gotQuery)

	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestExecuteRoute_RangeError(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(t, router, "/api/v1/execute", gin.H{
		"receiver_model": "AVR-X2300W",
		"action_name":    "volume_set",
		"host":           "192.0.2.1",
		"parameters":     gin.H{"level": 200},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "range", resp.Error.Kind)
}

func TestExecuteRoute_UnknownModel(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(t, router, "/api/v1/execute", gin.H{
		"receiver_model": "RX-V685",
		"action_name":    "power_on",
		"host":           "192.0.2.1",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommandsRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivers/by-model/AVR-X2300W/commands", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cmds []struct {
		ActionName string `json:"action_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmds))
	assert.NotEmpty(t, cmds)
}

func TestDiscoveryScanRoute(t *testing.T) {
	router, disc := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery/scan", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, disc.triggered)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Login, then retry with the issued token.
	loginResp := postJSON(t, router, "/api/v1/login", gin.H{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, loginResp.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(loginResp.Body.Bytes(), &login))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/receivers", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
