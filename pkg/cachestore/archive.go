package cachestore

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CreateArchive writes a tar+zstd archive of paths to a temporary file
// and returns its name and size. The caller removes the file. Entry
// names are kept relative to the working directory so a restore lands
// the cache dir where the tool expects it.
func CreateArchive(ctx context.Context, paths []string) (string, int64, error) {
	f, err := os.CreateTemp("", "cachepost-*.tzst")
	if err != nil {
		return "", 0, errors.Wrap(err, "create archive file")
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", 0, errors.Wrap(err, "create zstd writer")
	}
	tw := tar.NewWriter(zw)

	for _, path := range paths {
		err := ctx.Err()
		if err == nil {
			err = tarPath(tw, path)
		}
		if err != nil {
			tw.Close()
			zw.Close()
			f.Close()
			os.Remove(f.Name())
			return "", 0, errors.Wrapf(err, "archive %s", path)
		}
	}

	if err := tw.Close(); err == nil {
		err = zw.Close()
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", 0, errors.Wrap(err, "finalize archive")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", 0, errors.Wrap(err, "stat archive")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", 0, errors.Wrap(err, "close archive")
	}
	return f.Name(), info.Size(), nil
}

func tarPath(tw *tar.Writer, root string) error {
	return filepath.Walk(root, func(file string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		link := ""
		if fi.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(file); err != nil {
				return err
			}
		} else if !fi.Mode().IsRegular() && !fi.IsDir() {
			return nil
		}
		fih, err := tar.FileInfoHeader(fi, link)
		if err != nil {
			return err
		}
		fih.Name = file
		if string(filepath.Separator) != "/" {
			fih.Name = strings.ReplaceAll(fih.Name, string(filepath.Separator), "/")
		}
		if err := tw.WriteHeader(fih); err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}
