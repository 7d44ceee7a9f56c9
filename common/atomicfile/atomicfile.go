// Package atomicfile provides whole-file reads and writes that never leave a
// partially written file behind.
package atomicfile

import (
	"os"
	"path/filepath"
	"runtime"
)

// WriteFile writes data to filename through a temp file in the same directory,
// then renames it into place. Rename is atomic on POSIX filesystems, so readers
// observe either the old contents or the new, never a torn write.
func WriteFile(filename string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if runtime.GOOS != "windows" {
		if err = tmp.Chmod(perm); err != nil {
			return err
		}
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		// os.Rename fails on Windows if the target already exists.
		_ = os.Remove(filename)
	}
	return os.Rename(tmp.Name(), filename)
}

func ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}
