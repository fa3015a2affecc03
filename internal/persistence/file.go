package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON document per session in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the document path of a session.
func (fs *FileStore) Path(id int) string {
	return filepath.Join(fs.dir, fmt.Sprintf("session-%d.json", id))
}

// Save replaces the session document atomically: the new content is written
// to a temporary file, synced, and renamed over the old one.
func (fs *FileStore) Save(ctx context.Context, doc Document) error {
	if err := fs.save(ctx, doc); err != nil {
		return writeError(doc.ID, err)
	}
	slog.Info("session saved", "session", doc.ID, "path", fs.Path(doc.ID), "rounds", len(doc.History))
	return nil
}

func (fs *FileStore) save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prev, err := fs.Load(ctx, doc.ID)
	if err != nil {
		return err
	}
	if len(prev.History) > len(doc.History) {
		return fmt.Errorf("%w: %d rounds stored, document has %d", ErrHistoryRewrite, len(prev.History), len(doc.History))
	}

	if doc.Players == nil {
		doc.Players = []Player{}
	}
	if doc.History == nil {
		doc.History = [][]string{}
	}
	if len(doc.History) > 0 {
		doc.Latest = doc.History[len(doc.History)-1]
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, fmt.Sprintf(".session-%d-*.json", doc.ID))
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.Path(doc.ID)); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Load reads a session document. A missing file yields an empty document
// with only the ID set.
func (fs *FileStore) Load(ctx context.Context, id int) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	data, err := os.ReadFile(fs.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return Document{ID: id}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read session %d: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode session %d: %w", id, err)
	}
	if doc.ID != id {
		return Document{}, fmt.Errorf("session file %s holds session %d", fs.Path(id), doc.ID)
	}
	return doc, nil
}
