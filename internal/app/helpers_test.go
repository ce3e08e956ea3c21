package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildhub/internal/config"
	"buildhub/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		GoEnv:     "test",
		JWTSecret: testSecret,
		ClientURL: "http://localhost:3000",
	}
}

func newTestRouter(svc Services, checks map[string]HealthCheck) *gin.Engine {
	r := NewRouter(testConfig(), zap.NewNop(), svc, nil, checks)
	gin.SetMode(gin.TestMode)
	return r
}

func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := util.GenerateToken(userID, userID+"@example.com", role, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func doRequest(h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Errors  map[string]interface{} `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
