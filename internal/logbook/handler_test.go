package logbook

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogbookEndpoints(t *testing.T) {
	svc, _, alice, _ := newTestService(t)
	r := testutil.NewRouter()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), user.WithPrincipal(alice))

	tests := []struct {
		name string
		path string
		body gin.H
		want int
	}{
		{"log ok", "/api/logs/", gin.H{"title": "Siram", "note": "", "performedAt": "2025-03-01T08:00:00Z", "category": "watering"}, http.StatusOK},
		{"log bad category", "/api/logs/", gin.H{"title": "Siram", "performedAt": "2025-03-01T08:00:00Z", "category": "pruning"}, http.StatusBadRequest},
		{"log missing title", "/api/logs/", gin.H{"performedAt": "2025-03-01T08:00:00Z", "category": "other"}, http.StatusBadRequest},
		{"reminder ok", "/api/reminders/", gin.H{"title": "Pupuk", "scheduledFor": "2025-03-02T08:00:00Z", "frequency": "weekly"}, http.StatusOK},
		{"reminder bad frequency", "/api/reminders/", gin.H{"title": "Pupuk", "scheduledFor": "2025-03-02T08:00:00Z", "frequency": "daily"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/logs/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []LogEntrySchema
	testutil.Decode(t, w, &logs)
	require.Len(t, logs, 1)

	path := fmt.Sprintf("/api/logs/%d", logs[0].ID)
	w = testutil.DoJSON(t, r, http.MethodPatch, path, gin.H{"category": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoJSON(t, r, http.MethodPatch, path, gin.H{"note": "basah"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated LogEntrySchema
	testutil.Decode(t, w, &updated)
	assert.Equal(t, "basah", updated.Note)

	w = testutil.DoJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
