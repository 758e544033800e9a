package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modbot/restriction"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func serve(t *testing.T, r *Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(t, NewRouter(restriction.NewStore()), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRestrictionsListsActiveOnly(t *testing.T) {
	store := restriction.NewStore()
	store.Put("u1", "c1", now.Add(time.Hour))
	store.Put("u2", "c1", now.Add(-time.Hour))
	r := NewRouter(store)
	r.now = func() time.Time { return now }

	w := serve(t, r, "/restrictions")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count        int `json:"count"`
		Restrictions []struct {
			SubjectID string    `json:"subject_id"`
			ChannelID string    `json:"channel_id"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"restrictions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Restrictions, 1)
	assert.Equal(t, "u1", body.Restrictions[0].SubjectID)
	assert.True(t, body.Restrictions[0].ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestRestrictionsEmpty(t *testing.T) {
	w := serve(t, NewRouter(restriction.NewStore()), "/restrictions")
	assert.JSONEq(t, `{"count":0,"restrictions":[]}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	w := serve(t, NewRouter(restriction.NewStore()), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
