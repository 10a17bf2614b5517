package cachestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/nektos/cachepost/pkg/common"
)

const (
	apiBase = "_apis/artifactcache"

	// one PATCH per chunk, the way the service expects partial uploads
	uploadChunkSize = 32 << 20
)

// Client talks to the Actions cache service: reserve an entry, upload
// the archive in chunks, commit.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient returns a client for the cache service rooted at url,
// authenticating with the runtime token.
func NewClient(url, token string) *Client {
	return &Client{
		base:  strings.TrimSuffix(url, "/") + "/" + apiBase,
		token: token,
		http:  http.DefaultClient,
	}
}

type reserveRequest struct {
	Key     string `json:"key"`
	Version string `json:"version"`
	Size    int64  `json:"cacheSize"`
}

type reserveResponse struct {
	CacheID uint64 `json:"cacheId"`
}

// Save archives paths and uploads the result under key. A key that is
// already reserved for the same version is an informational skip.
func (c *Client) Save(ctx context.Context, key string, paths []string) error {
	logger := common.Logger(ctx)

	if warn := inspectRuntimeToken(c.token); warn != "" {
		logger.Warning(warn)
	}

	archive, size, err := CreateArchive(ctx, paths)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	version := Version(paths)
	logger.Debugf("reserving cache entry key=%s version=%s size=%d", key, version, size)

	id, reserved, err := c.reserve(ctx, key, version, size)
	if err != nil {
		return err
	}
	if !reserved {
		logger.Infof("cache entry with key %s already exists, not saving", key)
		return nil
	}

	if err := c.upload(ctx, id, archive); err != nil {
		return err
	}
	if err := c.commit(ctx, id, size); err != nil {
		return err
	}

	logger.Infof("saved cache entry %d under key %s (%d bytes)", id, key, size)
	return nil
}

func (c *Client) reserve(ctx context.Context, key, version string, size int64) (uint64, bool, error) {
	body, _ := json.Marshal(&reserveRequest{Key: key, Version: version, Size: size})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/caches", bytes.NewReader(body))
	if err != nil {
		return 0, false, errors.Wrap(err, "reserve cache entry")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return 0, false, errors.Wrap(err, "reserve cache entry")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusConflict || alreadyExists(resp):
		return 0, false, nil
	default:
		return 0, false, errors.Errorf("reserve cache entry: unexpected status %d", resp.StatusCode)
	}

	reserved := &reserveResponse{}
	if err := json.NewDecoder(resp.Body).Decode(reserved); err != nil {
		return 0, false, errors.Wrap(err, "decode reserve response")
	}
	return reserved.CacheID, true, nil
}

func (c *Client) upload(ctx context.Context, id uint64, archive string) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer f.Close()

	offset := int64(0)
	buf := make([]byte, uploadChunkSize)
	for {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			if uerr := c.uploadChunk(ctx, id, offset, buf[:n]); uerr != nil {
				return uerr
			}
			offset += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read archive")
		}
	}
}

func (c *Client) uploadChunk(ctx context.Context, id uint64, offset int64, chunk []byte) error {
	url := fmt.Sprintf("%s/caches/%d", c.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(chunk))
	if err != nil {
		return errors.Wrap(err, "upload cache chunk")
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/*", offset, offset+int64(len(chunk))-1))

	resp, err := c.do(req)
	if err != nil {
		return errors.Wrap(err, "upload cache chunk")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.Errorf("upload cache chunk at %d: unexpected status %d", offset, resp.StatusCode)
	}
	return nil
}

func (c *Client) commit(ctx context.Context, id uint64, size int64) error {
	url := fmt.Sprintf("%s/caches/%d", c.base, id)
	body, _ := json.Marshal(map[string]int64{"size": size})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "commit cache entry")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return errors.Wrap(err, "commit cache entry")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.Errorf("commit cache entry: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json;api-version=6.0-preview.1")
	return c.http.Do(req)
}

// alreadyExists sniffs the service's "already exist" error body on a
// 400, which old service versions use instead of 409.
func alreadyExists(resp *http.Response) bool {
	if resp.StatusCode != http.StatusBadRequest {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false
	}
	return bytes.Contains(body, []byte("already exist"))
}
