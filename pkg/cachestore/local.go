package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/nektos/cachepost/pkg/common"
)

// Entry is the metadata record of a locally stored cache archive.
type Entry struct {
	ID        uint64 `json:"id" boltholdKey:"ID"`
	Key       string `json:"key" boltholdIndex:"Key"`
	Version   string `json:"version"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"createdAt"`
}

// LocalStore keeps cache archives on local disk with bolthold metadata,
// for self-hosted runners that have no cache service configured. A new
// save under a key supersedes earlier entries for that key.
type LocalStore struct {
	dir string
}

// NewLocalStore opens (creating if needed) the store rooted at dir,
// defaulting to the user cache directory.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = filepath.Join(xdg.CacheHome, "cachepost")
	}
	if err := os.MkdirAll(filepath.Join(dir, "cache"), 0o755); err != nil {
		return nil, errors.Wrap(err, "create local store")
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) openDB() (*bolthold.Store, error) {
	return bolthold.Open(filepath.Join(s.dir, "bolt.db"), 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
}

// Save archives paths and records the entry, then prunes superseded
// entries for the same key.
func (s *LocalStore) Save(ctx context.Context, key string, paths []string) error {
	logger := common.Logger(ctx)

	archive, size, err := CreateArchive(ctx, paths)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	db, err := s.openDB()
	if err != nil {
		return errors.Wrap(err, "open local store")
	}
	defer db.Close()

	entry := &Entry{
		Key:       key,
		Version:   Version(paths),
		Size:      size,
		CreatedAt: time.Now().Unix(),
	}
	if err := db.Insert(bolthold.NextSequence(), entry); err != nil {
		return errors.Wrap(err, "record cache entry")
	}
	// write back the sequence id so queries on ID see it
	if err := db.Update(entry.ID, entry); err != nil {
		return errors.Wrap(err, "record cache entry")
	}

	dest := s.filename(entry.ID)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, "store archive")
	}
	if err := moveFile(archive, dest); err != nil {
		_ = db.Delete(entry.ID, entry)
		return errors.Wrap(err, "store archive")
	}

	if err := s.prune(db, key, entry.ID); err != nil {
		logger.Debugf("prune superseded entries: %v", err)
	}

	logger.Infof("saved cache entry %d under key %s (%d bytes) in %s", entry.ID, key, size, s.dir)
	return nil
}

// Find returns the newest complete entry whose key equals or prefixes
// key, the lookup the setup phase uses on restore.
func (s *LocalStore) Find(key string) (*Entry, string, error) {
	db, err := s.openDB()
	if err != nil {
		return nil, "", errors.Wrap(err, "open local store")
	}
	defer db.Close()

	var entries []Entry
	if err := db.Find(&entries, bolthold.Where("Key").Eq(key).SortBy("CreatedAt").Reverse()); err != nil {
		return nil, "", errors.Wrap(err, "find cache entry")
	}
	if len(entries) == 0 {
		return nil, "", nil
	}
	e := entries[0]
	return &e, s.filename(e.ID), nil
}

func (s *LocalStore) prune(db *bolthold.Store, key string, keep uint64) error {
	var stale []Entry
	if err := db.Find(&stale, bolthold.Where("Key").Eq(key).And("ID").Ne(keep)); err != nil {
		return err
	}
	for i := range stale {
		_ = os.Remove(s.filename(stale[i].ID))
		if err := db.Delete(stale[i].ID, &stale[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalStore) filename(id uint64) string {
	return filepath.Join(s.dir, "cache", fmt.Sprintf("%02x", id%0xff), fmt.Sprint(id))
}

// moveFile renames, falling back to a copy when the temp file lives on
// a different filesystem.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
