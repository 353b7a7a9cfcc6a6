package docfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/layerctl/internal/clock"
	"github.com/danieljhkim/layerctl/internal/fsops"
	"github.com/danieljhkim/layerctl/internal/hash"
	"github.com/danieljhkim/layerctl/internal/host/memhost"
)

// ErrConflict is returned by Save when the snapshot on disk no longer matches
// the one the session was opened from.
var ErrConflict = errors.New("document changed on disk since it was loaded")

// Session is an open snapshot.
type Session struct {
	Path string
	Doc  *memhost.Document

	// Digest is the content digest of the snapshot as last read or written.
	Digest  string
	SavedAt time.Time
}

// Store loads and saves snapshots.
type Store struct {
	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
}

// NewStore creates a new Store.
func NewStore(fs fsops.FS, hasher hash.Hasher, clk clock.Clock) *Store {
	return &Store{
		fs:     fs,
		hasher: hasher,
		clock:  clk,
	}
}

// Open reads the snapshot at path into an in-memory document.
func (s *Store) Open(path string) (*Session, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	doc, err := f.ToDocument(path)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}

	sess := &Session{
		Path:   path,
		Doc:    doc,
		Digest: s.hasher.HashBytes(data),
	}
	if f.SavedAt != nil {
		sess.SavedAt = *f.SavedAt
	}
	return sess, nil
}

// Save writes the session's document back to its snapshot, stamped with the
// current time. It fails with ErrConflict when the file was rewritten or
// removed since the session last read or wrote it.
func (s *Store) Save(sess *Session) error {
	exists, err := s.fs.Exists(sess.Path)
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s was removed", ErrConflict, sess.Path)
	}
	current, err := s.hasher.HashFile(sess.Path)
	if err != nil {
		return fmt.Errorf("failed to hash document: %w", err)
	}
	if current != sess.Digest {
		return fmt.Errorf("%w: %s", ErrConflict, sess.Path)
	}

	f := FromDocument(sess.Doc)
	now := s.clock.Now()
	f.SavedAt = &now

	data, err := Encode(f)
	if err != nil {
		return err
	}
	if err := s.fs.AtomicWrite(sess.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	sess.Digest = s.hasher.HashBytes(data)
	sess.SavedAt = now
	return nil
}

// Create writes a new snapshot. It refuses to overwrite an existing file.
func (s *Store) Create(path string, f *File) error {
	exists, err := s.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if exists {
		return fmt.Errorf("document %s: %w", path, os.ErrExist)
	}
	if err := f.Validate(); err != nil {
		return err
	}

	now := s.clock.Now()
	f.SavedAt = &now
	data, err := Encode(f)
	if err != nil {
		return err
	}
	if err := s.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Decode parses a snapshot. Unknown keys are rejected.
func Decode(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &f, nil
}

// Encode renders a snapshot as YAML.
func Encode(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}
