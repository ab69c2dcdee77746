package diagnosis

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/SlpAus/plantify-backend/internal/testutil"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngReader() io.Reader {
	return bytes.NewReader(append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{2}, 32)...))
}

func newRouter(f *fixture, p user.Principal) *gin.Engine {
	r := testutil.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api"), user.WithPrincipal(p))
	return r
}

func TestDiagnosisEndpoints(t *testing.T) {
	f := newFixture(t)
	scan := f.createScan(t, f.alice, "a")
	r := newRouter(f, f.alice)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/diagnosis/checklist", gin.H{
		"scanId": scan.ID, "confirmedSymptoms": []string{"a"}, "deniedSymptoms": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		DiagnosisID uint `json:"diagnosisId"`
	}
	testutil.Decode(t, w, &created)
	require.NotZero(t, created.DiagnosisID)
	path := "/api/diagnosis/" + strconv.FormatUint(uint64(created.DiagnosisID), 10)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/diagnosis/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []DiagnosisHistorySchema
	testutil.Decode(t, w, &history)
	assert.Len(t, history, 1)

	w = testutil.DoJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail DiagnosisSchema
	testutil.Decode(t, w, &detail)
	assert.Equal(t, "Leaf Spot", detail.Issue)
	assert.NotEmpty(t, detail.CreatedAt)

	w = testutil.DoJSON(t, newRouter(f, f.bob), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = testutil.DoJSON(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitChecklistErrors(t *testing.T) {
	f := newFixture(t)
	scan := f.createScan(t, f.alice, "a")
	r := newRouter(f, f.bob)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/diagnosis/checklist", gin.H{"confirmedSymptoms": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(t, r, http.MethodPost, "/api/diagnosis/checklist", gin.H{"scanId": scan.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.gen.resp, f.gen.err = nil, errors.New("timeout")
	w = testutil.DoJSON(t, newRouter(f, f.alice), http.MethodPost, "/api/diagnosis/checklist", gin.H{"scanId": scan.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
