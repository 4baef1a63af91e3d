package owncloud

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ocsBody(statuscode int, message, data string) string {
	return fmt.Sprintf(`{"ocs":{"meta":{"status":"ok","statuscode":%d,"message":%q},"data":%s}}`, statuscode, message, data)
}

func TestClientDoDecodesObjectData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.Header.Get("OCS-APIREQUEST"))
		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "alice", username)
		assert.Equal(t, "app-pass", password)

		assert.Equal(t, "/ocs/v1.php/apps/files_sharing/api/v1/shares", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "/Documents", r.URL.Query().Get("path"))

		fmt.Fprint(w, ocsBody(100, "OK", `{"id":42,"share_type":0,"path":"/Documents"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "app-pass")
	payload, err := client.Do(context.Background(), "GET", "shares", map[string]string{"path": "/Documents"})
	require.NoError(t, err)

	id, ok := payload.str("id")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestClientDoWrapsListData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ocsBody(100, "OK", `[{"id":"1","share_type":0},{"id":"2","share_type":3}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "app-pass")
	payload, err := client.Do(context.Background(), "GET", "shares", nil)
	require.NoError(t, err)

	records, ok := payload.list("shares")
	require.True(t, ok)
	assert.Len(t, records, 2)
}

func TestClientDoSendsFormParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/Photos", r.PostFormValue("path"))
		assert.Equal(t, "3", r.PostFormValue("shareType"))

		fmt.Fprint(w, ocsBody(100, "OK", `{"id":"9","share_type":3,"url":"https://example.com/s/t"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "app-pass")
	_, err := client.Do(context.Background(), "POST", "shares", map[string]string{"path": "/Photos", "shareType": "3"})
	require.NoError(t, err)
}

func TestClientDoServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ocsBody(403, "public upload disabled by the administrator", "null"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "app-pass")
	_, err := client.Do(context.Background(), "PUT", "shares/9", map[string]string{"publicUpload": "true"})
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, 403, serverErr.Code)
	assert.Equal(t, "public upload disabled by the administrator", serverErr.Message)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestClientDoUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ocsBody(997, "Unauthorised", "null"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "bad-pass")
	_, err := client.Do(context.Background(), "GET", "shares", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReauthRequired)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, 997, serverErr.Code)
}

func TestClientDoNonOcsErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "app-pass")
	_, err := client.Do(context.Background(), "GET", "shares", nil)
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusGatewayTimeout, serverErr.Code)
}

func TestClientDoEmptyDataVariants(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "null data", data: "null"},
		{name: "empty string data", data: `""`},
		{name: "empty list data", data: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, ocsBody(100, "OK", tt.data))
			}))
			defer server.Close()

			client := NewClient(server.URL, "alice", "app-pass")
			payload, err := client.Do(context.Background(), "DELETE", "shares/1", nil)
			require.NoError(t, err)
			require.NotNil(t, payload)
		})
	}
}

func TestManagerOverLiveClient(t *testing.T) {
	// End to end through the real transport: envelope decode, list
	// wrapping and entity construction.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ocsBody(100, "OK",
			`[{"id":"1","share_type":0,"path":"/d","permissions":19,"share_with":"bob"},`+
				`{"id":"2","share_type":3,"path":"/d","permissions":1,"url":"https://example.com/s/t"}]`))
	}))
	defer server.Close()

	m := NewManager(NewClient(server.URL, "alice", "app-pass"))
	defer m.Close()

	outcome := awaitOutcome(t, m.FetchShares(context.Background(), "/d"))
	require.Equal(t, OutcomeSharesFetched, outcome.Kind)
	require.Len(t, outcome.Shares, 2)
	assert.False(t, outcome.Shares[0].IsLink())
	assert.True(t, outcome.Shares[1].IsLink())
}
