package simstub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	w := newTestWorld(t)
	server := httptest.NewServer(NewRouter(w))
	defer server.Close()

	body := func(v interface{}) *bytes.Reader {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return bytes.NewReader(b)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{name: "grid", method: http.MethodGet, path: "/grid", wantStatus: http.StatusOK},
		{name: "entities", method: http.MethodGet, path: "/entities", wantStatus: http.StatusOK},
		{name: "move", method: http.MethodPost, path: "/entities/hero/move", body: types.MoveRequest{Target: types.Cell{X: 2, Y: 1}}, wantStatus: http.StatusOK},
		{name: "move unknown", method: http.MethodPost, path: "/entities/ghost/move", body: types.MoveRequest{}, wantStatus: http.StatusNotFound},
		{name: "attack self", method: http.MethodPost, path: "/entities/hero/attack", body: types.AttackRequest{TargetID: "hero"}, wantStatus: http.StatusBadRequest},
		{name: "refresh", method: http.MethodPost, path: "/entities/hero/refresh", wantStatus: http.StatusOK},
		{name: "create tile", method: http.MethodPost, path: "/tiles", body: types.Tile{Position: types.Cell{X: 0, Y: 0}}, wantStatus: http.StatusCreated},
		{name: "delete tile", method: http.MethodDelete, path: "/tiles/0/0", wantStatus: http.StatusNoContent},
		{name: "delete missing tile", method: http.MethodDelete, path: "/tiles/0/0", wantStatus: http.StatusNotFound},
		{name: "delete bad coordinates", method: http.MethodDelete, path: "/tiles/a/0", wantStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPut, path: "/grid", wantStatus: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reader *bytes.Reader
			if tt.body != nil {
				reader = body(tt.body)
			} else {
				reader = bytes.NewReader(nil)
			}
			req, err := http.NewRequest(tt.method, server.URL+tt.path, reader)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
				errResp := types.ErrorResponse{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
				assert.NotEmpty(t, errResp.Error)
			}
		})
	}
}

func TestRouter_Gzip(t *testing.T) {
	w := newTestWorld(t)
	server := httptest.NewServer(NewRouter(w))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL+"/grid", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}
