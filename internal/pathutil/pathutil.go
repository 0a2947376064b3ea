// Package pathutil resolves input-file paths to their absolute form
// and containing directory, used by the driver to log unambiguous
// paths and to anchor relative #include search paths.
package pathutil

import "path/filepath"

// Resolve returns relPath's absolute form and its parent directory.
func Resolve(relPath string) (fullPath, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	parentDir = filepath.Dir(fullPath)
	return fullPath, parentDir, nil
}
