package artifact

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Info is what the publisher learns about a local artifact before upload.
// Contents are not validated beyond the archive sanity check.
type Info struct {
	Path   string
	Size   int64
	SHA256 string
}

// Inspect checks that a local artifact is a readable archive and computes
// its checksum for the publish receipt. Remote artifacts are not
// inspected; the edit store validates them on upload.
func Inspect(path string) (*Info, error) {
	if isRemote(path) {
		return &Info{Path: path}, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat artifact %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, path)
	}

	// App bundles and packages are zip archives; anything that can't be
	// opened as one will be rejected by the store anyway.
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("artifact %s is not a valid archive: %w", path, err)
	}
	zr.Close()

	sum, err := checksumFile(path)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:   path,
		Size:   fi.Size(),
		SHA256: sum,
	}, nil
}

// checksumFile computes a sha256 checksum in the "sha256:<hex>" format.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum artifact %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
