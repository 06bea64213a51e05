// Package cachedir is the on-disk cache of everything fetched from MLS.
//
// Layout:
//
//	<root>/raw/<resource_name>               one JSON document per resource
//	<root>/photos/solo-<member_id>-<size>.jpg one file per downloaded photo
package cachedir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var ErrInvalidName = errors.New("invalid resource name")

// RawStore is a key -> JSON document cache backed by a directory. The
// presence of a file is the only signal that a resource has been fetched.
type RawStore struct {
	dir string
}

func NewRawStore(root string) RawStore {
	return RawStore{dir: filepath.Join(root, "raw")}
}

func (s RawStore) Dir() string {
	return s.dir
}

func (s RawStore) path(name string) (string, error) {
	if name == "" ||
		name == "." ||
		name == ".." ||
		strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s RawStore) Exists(name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}
	return fileExists(path)
}

// Read returns the stored document, found is false if nothing has been
// written under `name`.
func (s RawStore) Read(name string) (value json.RawMessage, found bool, err error) {
	path, err := s.path(name)
	if err != nil {
		return nil, false, err
	}
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !json.Valid(contents) {
		return nil, true, fmt.Errorf("resource %s: stored value is not valid json", name)
	}
	return contents, true, nil
}

// ReadOr decodes the document stored under `name` into a T, or returns `def`
// if there is none.
func ReadOr[T any](s RawStore, name string, def T) (T, error) {
	raw, found, err := s.Read(name)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	var out T
	err = json.Unmarshal(raw, &out)
	if err != nil {
		return def, fmt.Errorf("resource %s: decode: %w", name, err)
	}
	return out, nil
}

// Write serializes `value` to JSON and replaces whatever is stored under
// `name`. A json.RawMessage is stored verbatim.
func (s RawStore) Write(name string, value any) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	var serialized []byte
	switch v := value.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return fmt.Errorf("resource %s: value is not valid json", name)
		}
		serialized = v
	default:
		serialized, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("resource %s: encode: %w", name, err)
		}
	}

	return WriteFileAtomic(path, serialized)
}

// Delete removes a cached resource so that the next refresh fetches it again.
// Deleting a resource that does not exist is not an error.
func (s RawStore) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

type Entry struct {
	Name     string
	Size     int64
	Modified time.Time
}

// List returns every stored resource sorted by name, leftover temp files are
// not included.
func (s RawStore) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, e := range dirEntries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}
