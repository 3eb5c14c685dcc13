package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to the target path to form the backup path.
const BackupSuffix = ".bak"

// BackupPath returns the sibling backup path for target.
func BackupPath(target string) string {
	return target + BackupSuffix
}

// IsFile reports whether path exists and is a regular file (or a symlink to one).
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadText reads the whole file at path as a string.
func ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// GetFileSHA256 returns the hex encoded SHA256 of the file at path.
func GetFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashString returns the hex encoded SHA256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Backup copies target to its backup path, keeping permission bits and
// timestamps. A partially written backup is removed on failure.
func Backup(target string) (string, error) {
	dst := BackupPath(target)
	if err := CopyFile(target, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyFile copies src to dst and then applies src's mode and times to dst.
func CopyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return copyMetadata(dst, info)
}

func copyMetadata(dst string, info iofs.FileInfo) error {
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	mtime := info.ModTime()
	atime := accessTime(info, mtime)
	if err := os.Chtimes(dst, atime, mtime); err != nil && !errors.Is(err, iofs.ErrPermission) {
		return err
	}
	return nil
}

// WriteAtomic replaces the content of path so that readers observe either the
// old or the new content, never a partial write. Existing permission bits are
// kept; new files get 0644.
func WriteAtomic(path string, data []byte) error {
	perm := iofs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeAtomic(path, data, perm)
}
