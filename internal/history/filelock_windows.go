//go:build windows

package history

import "os"

// Windows has no flock; concurrent writers fall back to last rename wins.
func acquireFileLock(string) (*os.File, error) {
	return nil, nil
}

func releaseFileLock(*os.File) error {
	return nil
}
