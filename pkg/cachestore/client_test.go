package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCacheService records the reserve/upload/commit traffic the client
// is expected to produce.
type fakeCacheService struct {
	reserves []reserveRequest
	uploads  []string // Content-Range headers in order
	commits  int
	body     []byte

	reserveStatus int
	reserveBody   string
}

func newFakeCacheService() (*fakeCacheService, *httptest.Server) {
	svc := &fakeCacheService{}

	router := httprouter.New()
	router.POST("/_apis/artifactcache/caches", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		req := reserveRequest{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		svc.reserves = append(svc.reserves, req)
		if svc.reserveStatus != 0 {
			w.WriteHeader(svc.reserveStatus)
			_, _ = w.Write([]byte(svc.reserveBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"cacheId": 42})
	})
	router.PATCH("/_apis/artifactcache/caches/:id", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		svc.uploads = append(svc.uploads, r.Header.Get("Content-Range"))
		body, _ := io.ReadAll(r.Body)
		svc.body = append(svc.body, body...)
		w.WriteHeader(http.StatusOK)
	})
	router.POST("/_apis/artifactcache/caches/:id", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		svc.commits++
		w.WriteHeader(http.StatusOK)
	})

	return svc, httptest.NewServer(router)
}

func writeCacheDir(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	require.NoError(t, os.MkdirAll(".ccache", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(".ccache", "entry"), []byte("cached object"), 0o644))
}

func TestClientSave(t *testing.T) {
	writeCacheDir(t)

	svc, server := newFakeCacheService()
	defer server.Close()

	client := NewClient(server.URL, "runtime-token")
	err := client.Save(context.Background(), "ccache-linux-gcc", []string{".ccache"})
	require.NoError(t, err)

	require.Len(t, svc.reserves, 1)
	assert.Equal(t, "ccache-linux-gcc", svc.reserves[0].Key)
	assert.Equal(t, Version([]string{".ccache"}), svc.reserves[0].Version)
	assert.Greater(t, svc.reserves[0].Size, int64(0))

	require.Len(t, svc.uploads, 1)
	assert.Equal(t, fmt.Sprintf("bytes 0-%d/*", svc.reserves[0].Size-1), svc.uploads[0])
	assert.Equal(t, int(svc.reserves[0].Size), len(svc.body))

	assert.Equal(t, 1, svc.commits)
}

func TestClientSaveAlreadyExists(t *testing.T) {
	writeCacheDir(t)

	svc, server := newFakeCacheService()
	defer server.Close()
	svc.reserveStatus = http.StatusBadRequest
	svc.reserveBody = `{"error":"already exist"}`

	client := NewClient(server.URL, "")
	err := client.Save(context.Background(), "ccache-linux-gcc", []string{".ccache"})
	require.NoError(t, err)

	assert.Len(t, svc.reserves, 1)
	assert.Empty(t, svc.uploads)
	assert.Zero(t, svc.commits)
}

func TestClientSaveServerError(t *testing.T) {
	writeCacheDir(t)

	svc, server := newFakeCacheService()
	defer server.Close()
	svc.reserveStatus = http.StatusInternalServerError

	client := NewClient(server.URL, "")
	err := client.Save(context.Background(), "k1", []string{".ccache"})
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestClientSendsBearerToken(t *testing.T) {
	writeCacheDir(t)

	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "the-token")
	_ = client.Save(context.Background(), "k1", []string{".ccache"})

	assert.Equal(t, "Bearer the-token", auth)
	assert.True(t, strings.HasSuffix(client.base, "/_apis/artifactcache"))
}
