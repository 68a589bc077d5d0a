package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte("<html>page body</html>"))
	}))
	defer server.Close()

	body, err := Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>page body</html>", body)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, server.URL, statusErr.URL)
}

func TestFetch_InvalidUTF8Replaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{'o', 'k', 0xff})
	}))
	defer server.Close()

	body, err := Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok�", body)
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := Fetch(context.Background(), "http://[::1]:namedport")
	assert.Error(t, err)
}
