package reward

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestClient_Transfer(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"transaction":{"hash":"0xabc123","symbol":"DOGE","amount":10,"recipient":"` + addr + `"}}`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", time.Second, nil)
	hash, err := c.Transfer(context.Background(), addr, "10", "DOGE")

	require.NoError(t, err)
	assert.Equal(t, "0xabc123", hash)
	assert.Equal(t, "/send/"+addr, gotPath)
	assert.Equal(t, "DOGE", gotBody["symbol"])
	assert.Equal(t, float64(10), gotBody["amount"])
}

func TestClient_TransferFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "bad_address", status: http.StatusBadRequest, body: `{"error":"Invalid Ethereum address"}`},
		{name: "server_error", status: http.StatusInternalServerError, body: `{"error":"Internal server error","message":"nonce too low"}`},
		{name: "success_false", status: http.StatusOK, body: `{"success":false}`},
		{name: "missing_hash", status: http.StatusOK, body: `{"success":true,"transaction":{}}`},
		{name: "not_json", status: http.StatusOK, body: `<html>gateway</html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			_, err := New(ts.URL, time.Second, nil).Transfer(context.Background(), addr, "10", "DOGE")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransferFailed)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestClient_TransferUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, time.Second, nil).Transfer(context.Background(), addr, "10", "DOGE")
	assert.ErrorIs(t, err, ErrTransferFailed)
}
