package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadBaseURLs(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/contacts"},
		{"ftp scheme", "ftp://example.com"},
		{"no host", "http://"},
		{"query", "http://localhost:5000?x=1"},
		{"fragment", "http://localhost:5000#top"},
		{"unparsable", "http://[::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.url)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBaseURL)
		})
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:5000/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())
}

func TestClient_GetDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/things", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"value":"ok"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.Get(context.Background(), "/things", &out))
	assert.Equal(t, "ok", out.Value)
}

func TestClient_PostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"n":1}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"n":2}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var out struct {
		N int `json:"n"`
	}
	require.NoError(t, c.Post(context.Background(), "/n", map[string]int{"n": 1}, &out))
	assert.Equal(t, 2, out.N)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such contact", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/contacts/9", &struct{}{})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "no such contact", se.Body)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "GET /contacts/9: 404 Not Found")
}

func TestClient_ServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Delete(context.Background(), "/contacts/1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "api: DELETE /contacts/1: 500 Internal Server Error", err.Error())
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/contacts", &[]struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api: decoding GET /contacts")
}

func TestClient_EmptySuccessBodyLeavesOutUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	out := struct{ Name string }{Name: "unchanged"}
	require.NoError(t, c.Post(context.Background(), "/contacts", map[string]string{"name": "A"}, &out))
	assert.Equal(t, "unchanged", out.Name)
}

func TestClient_DeleteIgnoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	assert.NoError(t, c.Delete(context.Background(), "/contacts/1"))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/contacts", &struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api: GET /contacts:")
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c, err := New(srv.URL, WithTimeout(5*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Get(ctx, "/contacts", &struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
