// Package snapshot stores rendered markup next to check files and compares
// later runs against it.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

const (
	// Dir is the directory, beside the check file, that holds snapshots.
	Dir = "__snapshots__"
	// Ext is the extension of a snapshot file.
	Ext = ".snap.json"
)

// ErrMissing is returned when a snapshot has never been recorded.
var ErrMissing = errors.New("snapshot does not exist (run with --update-snapshots to create it)")

// Status is the outcome of a comparison.
type Status int

const (
	Matched Status = iota
	Created
	Updated
	Mismatched
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Mismatched:
		return "mismatched"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes one comparison. Expected is the stored markup and Actual
// the normalized markup that was compared.
type Result struct {
	Status   Status
	Expected string
	Actual   string
}

// Passed reports whether the comparison should count as passing.
func (r *Result) Passed() bool {
	return r.Status != Mismatched
}

// Store reads and writes snapshot files. It is safe for concurrent use.
type Store struct {
	update bool

	mu    sync.Mutex
	files map[string]map[string]string
}

// NewStore returns a Store. In update mode missing or differing snapshots
// are rewritten instead of failing.
func NewStore(update bool) *Store {
	return &Store{
		update: update,
		files:  make(map[string]map[string]string),
	}
}

// Path returns the snapshot file used for checkFile. The check file suffix
// (".domspec.yaml" or any other extension) is dropped.
func Path(checkFile string) string {
	base := filepath.Base(checkFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimSuffix(name, ".domspec")
	return filepath.Join(filepath.Dir(checkFile), Dir, name+Ext)
}

// Compare compares markup against the snapshot stored under key for
// checkFile.
func (s *Store) Compare(checkFile, key, markup string) (*Result, error) {
	path := Path(checkFile)
	actual := Normalize(markup)

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots, err := s.load(path)
	if err != nil {
		return nil, err
	}

	expected, ok := snapshots[key]
	switch {
	case ok && expected == actual:
		return &Result{Status: Matched, Expected: expected, Actual: actual}, nil
	case !ok && !s.update:
		return nil, fmt.Errorf("%s: %w", key, ErrMissing)
	case ok && !s.update:
		return &Result{Status: Mismatched, Expected: expected, Actual: actual}, nil
	}

	snapshots[key] = actual
	if err := s.save(path, snapshots); err != nil {
		return nil, err
	}
	status := Created
	if ok {
		status = Updated
	}
	return &Result{Status: status, Expected: actual, Actual: actual}, nil
}

func (s *Store) load(path string) (map[string]string, error) {
	if cached, ok := s.files[path]; ok {
		return cached, nil
	}

	snapshots := make(map[string]string)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading snapshots: %w", err)
	default:
		if err := json.Unmarshal(data, &snapshots); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	s.files[path] = snapshots
	return snapshots, nil
}

func (s *Store) save(path string, snapshots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

var interTagSpace = regexp.MustCompile(`>\s+<`)

// Normalize trims markup and drops whitespace between tags so indentation
// changes in the page do not break a snapshot.
func Normalize(markup string) string {
	return interTagSpace.ReplaceAllString(strings.TrimSpace(markup), "><")
}
