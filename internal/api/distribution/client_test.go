package distribution

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewClient_ValidatesHost rejects an empty host.
func TestNewClient_ValidatesHost(t *testing.T) {
	t.Parallel()

	c, err := NewClient(" ", "token")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_ReleaseAndBuilds serves both endpoints and checks paths, query and auth.
func TestClient_ReleaseAndBuilds(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/service-api/push/releases/by_version/376715/1.4.2", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_, _ = w.Write([]byte(`{"release":{"id":77}}`))
	})
	mux.HandleFunc("/service-api/push/releases/builds/77", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("game_id") != "362412" || r.URL.Query().Get("package_id") != "376715" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_, _ = w.Write([]byte(`{"builds":{"data":[{"id":5,"file":{"filename":"win64-package.tar.gz"}},null]}}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := NewClient(ts.URL+"/", "secret", WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	release, err := c.ReleaseByVersion(context.Background(), 376715, "1.4.2")
	require.NoError(t, err)
	require.Equal(t, int64(77), release.ID)

	builds, err := c.ListBuilds(context.Background(), release.ID, 362412, 376715)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	require.Equal(t, int64(5), builds[0].ID)
	require.Equal(t, "win64-package.tar.gz", builds[0].File.Filename)
	require.Nil(t, builds[1])
}

// TestClient_ErrorStatus maps non-2xx responses to errors.
func TestClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "bad")
	require.NoError(t, err)

	_, err = c.ReleaseByVersion(context.Background(), 1, "1.0.0")
	require.ErrorIs(t, err, errBadHTTPStatus)
}

// TestClient_MissingRelease fails when the release object is absent.
func TestClient_MissingRelease(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "token")
	require.NoError(t, err)

	_, err = c.ReleaseByVersion(context.Background(), 1, "1.0.0")
	require.ErrorIs(t, err, errReleaseNotFound)
}
