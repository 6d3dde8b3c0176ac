package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrDestinationExists is returned by CopyTree when the destination path is
// already present.
var ErrDestinationExists = errors.New("destination already exists")

// Exists reports whether anything (file, directory or symlink) is present at
// path. A dangling symlink counts as present.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// CopyFile copies the contents and permission bits of src to dst,
// replacing dst if it exists. Symlinks at src are followed. The data goes to
// a temp file beside dst that is renamed over it, so a read-only file left by
// an earlier copy is replaced rather than opened for writing. It returns the
// number of bytes written.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("source %s is a directory", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, in)
	if err != nil {
		return n, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close destination: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return n, fmt.Errorf("set permissions on %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return n, fmt.Errorf("replace %s: %w", dst, err)
	}
	tmp = nil
	return n, nil
}

// CopyTree recursively copies the directory src to dst, which must not
// exist. A symlink at src itself is resolved; symlinks below it are
// recreated with the same target. Regular files keep their permission bits
// and special files are skipped. It returns the total number of file bytes
// written. On error the partial copy is left in place.
func CopyTree(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("access source: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("source %s is not a directory", src)
	}
	if Exists(dst) {
		return 0, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if src, err = filepath.EvalSymlinks(src); err != nil {
		return 0, fmt.Errorf("resolve source: %w", err)
	}

	var total int64
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			dirInfo, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, dirInfo.Mode().Perm()|0700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			n, err := CopyFile(path, target)
			total += n
			return err
		default:
			return nil
		}
	})
	if err != nil {
		return total, fmt.Errorf("copy tree %s to %s: %w", src, dst, err)
	}
	return total, nil
}

// CollisionName returns the first free name in dir derived from base by
// inserting _dupN (N = 1, 2, ...). For files the suffix goes before the
// extension; for directories it is appended. A name is free when nothing
// exists at that path and taken (if non-nil) reports false for it.
func CollisionName(dir, base string, isDir bool, taken func(name string) bool) string {
	stem, ext := base, ""
	if !isDir {
		ext = filepath.Ext(base)
		stem = strings.TrimSuffix(base, ext)
		if stem == "" {
			// Dotfiles such as ".env" have no stem to suffix.
			stem, ext = base, ""
		}
	}

	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_dup%d%s", stem, n, ext)
		if taken != nil && taken(name) {
			continue
		}
		if !Exists(filepath.Join(dir, name)) {
			return name
		}
	}
}
