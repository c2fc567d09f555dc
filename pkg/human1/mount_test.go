package human1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"human1-sdk/internal/models"
)

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api", "/api"},
		{"api", "/api"},
		{"/api/", "/api"},
		{"/api//", "/api"},
		{"/", ""},
		{"", ""},
		{" /v1/sdk ", "/v1/sdk"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBasePath(tt.in))
		})
	}
}

type recordedCall struct {
	req models.RequestData
}

func recordingRoute(method, path string, calls *[]recordedCall, env models.Envelope) models.RouteDefinition {
	return models.RouteDefinition{
		Path:   path,
		Method: method,
		Handler: func(_ context.Context, req models.RequestData) models.Envelope {
			*calls = append(*calls, recordedCall{req: req})
			return env
		},
	}
}

func TestMount_GetReturnsEnvelopeUnmodified(t *testing.T) {
	var calls []recordedCall
	app := NewApp()
	n, err := Mount(app, "/api", []models.RouteDefinition{
		recordingRoute(http.MethodGet, "/x", &calls, models.Envelope{Status: http.StatusAccepted, Data: map[string]int{"n": 1}}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x?limit=5&tag=a&tag=b", nil))

	require.Len(t, calls, 1)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
	assert.Equal(t, "5", calls[0].req["limit"])
	assert.Equal(t, []interface{}{"a", "b"}, calls[0].req["tag"])
}

func TestMount_PostMergesBodyAndQuery(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		want models.RequestData
	}{
		{
			name: "body only",
			url:  "/api/query",
			body: `{"query":"How many films?","responseFormat":"paragraph"}`,
			want: models.RequestData{"query": "How many films?", "responseFormat": "paragraph"},
		},
		{
			name: "query string wins",
			url:  "/api/query?responseFormat=table",
			body: `{"query":"q","responseFormat":"paragraph"}`,
			want: models.RequestData{"query": "q", "responseFormat": "table"},
		},
		{
			name: "empty body",
			url:  "/api/query?query=from-url",
			body: "",
			want: models.RequestData{"query": "from-url"},
		},
		{
			name: "null body",
			url:  "/api/query",
			body: "null",
			want: models.RequestData{},
		},
		{
			name: "numbers keep precision",
			url:  "/api/query",
			body: `{"limit":10}`,
			want: models.RequestData{"limit": json.Number("10")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []recordedCall
			app := NewApp()
			_, err := Mount(app, "/api/", []models.RouteDefinition{
				recordingRoute(http.MethodPost, "/query", &calls, models.OK("ok")),
			})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.want, calls[0].req)
		})
	}
}

func TestMount_MalformedBody(t *testing.T) {
	for _, body := range []string{`{"query":`, `[1,2]`, `"text"`} {
		t.Run(body, func(t *testing.T) {
			var calls []recordedCall
			app := NewApp()
			_, err := Mount(app, "/api", []models.RouteDefinition{
				recordingRoute(http.MethodPut, "/x", &calls, models.OK("ok")),
			})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/x", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"Invalid JSON body"`)
			assert.Empty(t, calls)
		})
	}
}

func TestMount_RootBasePath(t *testing.T) {
	var calls []recordedCall
	app := NewApp()
	_, err := Mount(app, "/", []models.RouteDefinition{
		recordingRoute(http.MethodDelete, "x", &calls, models.OK(nil)),
	})
	require.NoError(t, err)
	assert.Equal(t, []RouteInfo{{Method: "DELETE", Path: "/x"}}, app.Routes())
}

func TestMount_TwiceRegistersDuplicates(t *testing.T) {
	var calls []recordedCall
	table := []models.RouteDefinition{recordingRoute(http.MethodGet, "/x", &calls, models.OK(nil))}

	app := NewApp()
	_, err := Mount(app, "/api", table)
	require.NoError(t, err)
	_, err = Mount(app, "/api", table)
	require.NoError(t, err)

	assert.Len(t, app.Routes(), 2)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Len(t, calls, 1)
}

func TestMount_SkipsInvalidRoutes(t *testing.T) {
	var calls []recordedCall
	app := NewApp()
	n, err := Mount(app, "/api", []models.RouteDefinition{
		recordingRoute("TRACE", "/bad", &calls, models.OK(nil)),
		{Path: "/nil", Method: http.MethodGet},
		recordingRoute(http.MethodGet, "/good", &calls, models.OK(nil)),
	})
	assert.Equal(t, 1, n)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidRoute))
	assert.Equal(t, []RouteInfo{{Method: "GET", Path: "/api/good"}}, app.Routes())
}

func TestMount_NilApplication(t *testing.T) {
	n, err := Mount(nil, "/api", nil)
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, ErrInvalidApplication))
}

func TestMount_WrapsMiddleware(t *testing.T) {
	var calls []recordedCall
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}

	app := NewApp()
	_, err := Mount(app, "/api", []models.RouteDefinition{
		recordingRoute(http.MethodGet, "/x", &calls, models.OK(nil)),
	}, deny)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, calls)
}
