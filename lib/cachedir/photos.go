package cachedir

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PhotoStore holds downloaded member photos, one file per (member, size).
// A file that exists is never downloaded again.
type PhotoStore struct {
	dir string
}

func NewPhotoStore(root string) PhotoStore {
	return PhotoStore{dir: filepath.Join(root, "photos")}
}

func (s PhotoStore) Dir() string {
	return s.dir
}

// FileName is the name of the cached photo relative to Dir.
func FileName(memberId int64, size string) string {
	return fmt.Sprintf("solo-%d-%s.jpg", memberId, size)
}

func (s PhotoStore) Path(memberId int64, size string) string {
	return filepath.Join(s.dir, FileName(memberId, size))
}

func (s PhotoStore) Exists(memberId int64, size string) (bool, error) {
	return fileExists(s.Path(memberId, size))
}

func (s PhotoStore) Write(memberId int64, size string, image []byte) error {
	return WriteFileAtomic(s.Path(memberId, size), image)
}

// Count returns the number of cached photos of the given size.
func (s PhotoStore) Count(size string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	suffix := "-" + size + ".jpg"
	count := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "solo-") || !strings.HasSuffix(name, suffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "solo-"), suffix)
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			continue
		}
		count++
	}
	return count, nil
}
