package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const snapshotVersion = 1

// zstd frame magic number
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileOptions configures a FileStore.
type FileOptions struct {
	Path string
	// Compress writes the snapshot zstd-compressed. Compressed snapshots are
	// always readable regardless of this flag.
	Compress bool
	// FlushInterval batches writes. Zero flushes on every write.
	FlushInterval time.Duration
	Logger        *zap.Logger
}

type snapshot struct {
	Version int               `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Entries map[string]string `json:"entries"`
}

// FileStore keeps every key in memory and persists them as one snapshot file.
type FileStore struct {
	opts   FileOptions
	logger *zap.Logger

	mu    sync.Mutex
	data  map[string][]byte
	dirty bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// OpenFile loads the snapshot at opts.Path and starts the flush loop when an
// interval is configured. A missing file yields an empty store. A corrupt
// file is logged and treated as empty.
func OpenFile(opts FileOptions) (*FileStore, error) {
	if opts.Path == "" {
		return nil, errors.New("store path is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	s := &FileStore{
		opts:    opts,
		logger:  opts.Logger,
		data:    make(map[string][]byte),
		encoder: encoder,
		decoder: decoder,
	}

	if err := s.load(); err != nil {
		s.logger.Warn("Discarding unreadable store snapshot",
			zap.String("path", opts.Path),
			zap.Error(err))
		s.data = make(map[string][]byte)
	}

	if opts.FlushInterval > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.flushLoop()
	}

	return s, nil
}

// Path returns the snapshot location.
func (s *FileStore) Path() string {
	return s.opts.Path
}

// Get returns a copy of the value stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(value), nil
}

// Set stores value and flushes unless writes are batched.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = clone(value)
	s.dirty = true
	return s.maybeFlushLocked()
}

// Remove deletes key and flushes unless writes are batched.
func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	s.dirty = true
	return s.maybeFlushLocked()
}

// Keys returns keys with prefix, sorted.
func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedKeys(s.data, prefix), nil
}

// Flush writes pending changes to disk.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

// Close stops the flush loop and writes pending changes.
func (s *FileStore) Close() error {
	var err error
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
		err = s.Flush()
		s.encoder.Close()
		s.decoder.Close()
	})
	return err
}

func (s *FileStore) maybeFlushLocked() error {
	if s.opts.FlushInterval > 0 {
		return nil
	}
	return s.flushLocked()
}

func (s *FileStore) flushLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				s.logger.Warn("Store flush failed", zap.String("path", s.opts.Path), zap.Error(err))
			}
		}
	}
}

func (s *FileStore) flushLocked() error {
	if !s.dirty {
		return nil
	}

	entries := make(map[string]string, len(s.data))
	for k, v := range s.data {
		entries[k] = string(v)
	}

	data, err := sonic.Marshal(snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if s.opts.Compress {
		data = s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	}

	if err := writeAtomic(s.opts.Path, data); err != nil {
		return err
	}

	s.dirty = false
	s.logger.Debug("Store flushed", zap.String("path", s.opts.Path), zap.Int("keys", len(entries)))
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.opts.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	if bytes.HasPrefix(data, zstdMagic) {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("failed to decompress snapshot: %w", err)
		}
	}

	var snap snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	for k, v := range snap.Entries {
		s.data[k] = []byte(v)
	}
	s.logger.Debug("Store loaded", zap.String("path", s.opts.Path), zap.Int("keys", len(s.data)))
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
