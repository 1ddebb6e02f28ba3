package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerLabelsByRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(InstrumentHandler)
	router.HandleFunc("/api/quizzes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/quizzes/{id}", "404"))

	for _, path := range []string{"/api/quizzes/1", "/api/quizzes/2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/quizzes/{id}", "404"))
	assert.Equal(t, before+2, after)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestRecordEntityCreated(t *testing.T) {
	before := testutil.ToFloat64(entitiesCreated.WithLabelValues("match"))
	RecordEntityCreated("match")
	assert.Equal(t, before+1, testutil.ToFloat64(entitiesCreated.WithLabelValues("match")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordValidationFailure("blog_post")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "astroquiz_http_validation_failures_total")
}

func TestRouteTemplateWithoutRouter(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeTemplate(httptest.NewRequest(http.MethodGet, "/nowhere", nil)))
}
