//go:build !windows

package fs

import (
	iofs "io/fs"

	"github.com/google/renameio/v2"
)

func writeAtomic(path string, data []byte, perm iofs.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
