package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// newTestClient serves handler under /api and returns a client pointed at it
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", handler))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestConnectDaemon(t *testing.T) {
	var gotDaemon string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/daemon/connect", r.URL.Path)
		gotDaemon = r.URL.Query().Get("daemon")
		writeJSON(t, w, map[string]any{"success": true})
	})

	require.NoError(t, c.ConnectDaemon(context.Background(), "tcp://localhost:30020"))
	assert.Equal(t, "tcp://localhost:30020", gotDaemon)
}

func TestServerErrorCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		writeJSON(t, w, map[string]any{"success": false, "message": "daemon unreachable"})
	})

	err := c.ConnectDaemon(context.Background(), "tcp://nowhere:1")
	require.Error(t, err)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "daemon unreachable", serverErr.Message)
	assert.Equal(t, "daemon unreachable", err.Error())
}

func TestMissingSuccessIsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"address": "tcp://x:1"})
	})

	_, err := c.GetDaemon(context.Background())
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "get daemon failed", err.Error())
}

func TestNonJSONReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := c.ListComponents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGetDaemon(t *testing.T) {
	tests := []struct {
		name  string
		reply map[string]any
		want  string
	}{
		{"connected", map[string]any{"success": true, "address": "tcp://localhost:30020"}, "tcp://localhost:30020"},
		{"not connected", map[string]any{"success": true, "address": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/daemon/get", r.URL.Path)
				writeJSON(t, w, tt.reply)
			})
			got, err := c.GetDaemon(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListAndGetComponents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/components/list":
			writeJSON(t, w, map[string]any{
				"success": true,
				"components": map[string]any{
					"a1": map[string]any{
						"name":    "filter",
						"version": "2.0",
						"parameters": map[string]any{
							"threshold": map[string]any{"type": "text", "default": "0.5"},
						},
						"inputs":  map[string]any{"rows": map[string]any{"type": "list"}},
						"outputs": map[string]any{"rows": map[string]any{"type": "list"}},
					},
				},
			})
		case "/components/get":
			assert.Equal(t, "a1", r.URL.Query().Get("address"))
			writeJSON(t, w, map[string]any{
				"success":   true,
				"component": map[string]any{"name": "filter", "author": "pk", "version": "2.0"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	components, err := c.ListComponents(context.Background())
	require.NoError(t, err)
	require.Contains(t, components, "a1")
	assert.Equal(t, "filter", components["a1"].Name)
	assert.Equal(t, "0.5", components["a1"].Parameters["threshold"].Default)
	assert.Equal(t, "list", components["a1"].Inputs["rows"].Type)

	desc, err := c.GetComponent(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.Descriptor{Name: "filter", Author: "pk", Version: "2.0"}, desc)
}

func TestLoadComponent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/components/load", r.URL.Path)
		assert.Equal(t, "examples/file loader", r.URL.Query().Get("path"))
		writeJSON(t, w, map[string]any{"success": true, "address": "tcp://localhost:4001"})
	})

	addr, err := c.LoadComponent(context.Background(), "examples/file loader")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:4001", addr)
}

func TestSendToComponent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "a1", r.URL.Query().Get("address"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "get_cruxfile", body["name"])
		writeJSON(t, w, map[string]any{"success": true, "response": map[string]any{"ok": 1.0}})
	})

	resp, err := c.SendToComponent(context.Background(), "a1", map[string]any{"name": "get_cruxfile"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": 1.0}, resp)
}

func TestSendToComponentRequiresName(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.SendToComponent(context.Background(), "a1", map[string]any{"payload": 1})
	assert.ErrorIs(t, err, models.ErrMissingMessageName)
	assert.False(t, called, "nothing may be sent without a name")
}
