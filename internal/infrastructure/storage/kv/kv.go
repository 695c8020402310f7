package kv

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/exp/slog"

	"surveysync/internal/infrastructure/storage"
)

// Store persists JSON blobs in the kv_cache table, gzip-compressed.
// Reads never fail on a corrupted blob: the key is cleared and the
// caller sees an absent value. Blobs written by older builds as plain
// JSON are migrated to the compressed form on first read.
type Store struct {
	handle *storage.Handle
	log    *slog.Logger
}

func NewStore(handle *storage.Handle, log *slog.Logger) *Store {
	return &Store{
		handle: handle,
		log:    log,
	}
}

// Save marshals value to JSON, compresses it and upserts it under key.
func (s *Store) Save(key string, value any) error {
	if !s.handle.Available() {
		return fmt.Errorf("local storage unavailable")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", key, err)
	}

	body, err := compress(raw)
	if err != nil {
		return fmt.Errorf("compress value for %q: %w", key, err)
	}

	_, err = s.handle.DB().Exec(`
		INSERT INTO kv_cache (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, key, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.handle.MarkFailure("kv.save", err)
		return fmt.Errorf("save %q: %w", key, err)
	}

	return nil
}

// Load reads the blob under key into out. It returns false when the
// key is absent, the store is unavailable, or the blob is corrupted
// beyond repair — corruption clears the key instead of erroring.
func (s *Store) Load(key string, out any) (bool, error) {
	if !s.handle.Available() {
		return false, nil
	}

	var body []byte
	err := s.handle.DB().QueryRow("SELECT body FROM kv_cache WHERE key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		s.handle.MarkFailure("kv.load", err)
		return false, nil
	}

	raw, err := decompress(body)
	if err != nil {
		// Legacy format: older builds wrote the JSON uncompressed.
		if json.Valid(body) {
			if err := json.Unmarshal(body, out); err == nil {
				s.migrateLegacy(key, body)
				return true, nil
			}
		}
		s.log.Warn("corrupted cache entry cleared", "key", key, "error", err)
		s.clear(key)
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("corrupted cache entry cleared", "key", key, "error", err)
		s.clear(key)
		return false, nil
	}

	return true, nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	if !s.handle.Available() {
		return fmt.Errorf("local storage unavailable")
	}

	if _, err := s.handle.DB().Exec("DELETE FROM kv_cache WHERE key = ?", key); err != nil {
		s.handle.MarkFailure("kv.delete", err)
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// migrateLegacy rewrites a plain-JSON blob in compressed form.
func (s *Store) migrateLegacy(key string, raw []byte) {
	body, err := compress(raw)
	if err != nil {
		s.log.Warn("legacy cache migration failed", "key", key, "error", err)
		return
	}

	_, err = s.handle.DB().Exec(
		"UPDATE kv_cache SET body = ?, updated_at = ? WHERE key = ?",
		body, time.Now().UTC().Format(time.RFC3339), key,
	)
	if err != nil {
		s.log.Warn("legacy cache migration failed", "key", key, "error", err)
		return
	}

	s.log.Debug("legacy cache entry migrated", "key", key)
}

func (s *Store) clear(key string) {
	if _, err := s.handle.DB().Exec("DELETE FROM kv_cache WHERE key = ?", key); err != nil {
		s.handle.MarkFailure("kv.clear", err)
	}
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(body []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return raw, nil
}
