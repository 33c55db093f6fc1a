package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestSearchReturnsOrganicResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "google_scholar", r.URL.Query().Get("engine"))
		assert.Equal(t, "linear algebra", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"organic_results":[
			{"title":"Matrices","link":"https://example.org/m","snippet":"Rows and columns"},
			{"title":"Vectors"}
		]}`))
	})

	materials, err := c.Search(context.Background(), "linear algebra")
	require.NoError(t, err)
	assert.Equal(t, []domain.StudyMaterial{
		{Title: "Matrices", Link: "https://example.org/m", Snippet: "Rows and columns"},
		{Title: "Vectors"},
	}, materials)
}

func TestSearchWithoutResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"search_metadata":{"status":"Success"}}`))
	})

	materials, err := c.Search(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.NotNil(t, materials)
	assert.Empty(t, materials)
}

func TestSearchHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid API key."}`))
	})

	_, err := c.Search(context.Background(), "algebra")
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
	assert.Contains(t, err.Error(), "Invalid API key.")
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(logger.Nop(), Config{})
	assert.Error(t, err)
}
