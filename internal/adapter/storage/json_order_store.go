package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rl1809/merchant/internal/core/domain"
	"github.com/rl1809/merchant/internal/port"
)

var ErrNotArray = errors.New("order log is not a JSON array")

const orderLogLockPrefix = "lock:orders:"

// JSONOrderStore keeps the order log as a single JSON array file. Every
// append rewrites the whole file while holding the locker for that path.
type JSONOrderStore struct {
	path    string
	lockKey string
	locker  port.Locker
}

func NewJSONOrderStore(path string, locker port.Locker) *JSONOrderStore {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &JSONOrderStore{path: path, lockKey: orderLogLockKey(path), locker: locker}
}

// orderLogLockKey names the lock after the absolute path so writers that
// spell the same file differently share one lock.
func orderLogLockKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return orderLogLockPrefix + abs
}

func (s *JSONOrderStore) AppendOrder(ctx context.Context, order domain.Order) error {
	unlock, err := s.locker.Lock(ctx, s.lockKey)
	if err != nil {
		return fmt.Errorf("lock order log: %w", err)
	}
	defer unlock()

	records, err := s.readRecords()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	records = append(records, raw)

	return s.writeRecords(records)
}

func (s *JSONOrderStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read order log %s: %w", s.path, err)
	}
	if err := checkArray(data); err != nil {
		return nil, fmt.Errorf("decode order log %s: %w", s.path, err)
	}

	orders := []domain.Order{}
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode order log %s: %w", s.path, err)
	}
	return orders, nil
}

// readRecords returns the stored orders untouched so records written by
// other tools survive the rewrite. A missing file is an empty log.
func (s *JSONOrderStore) readRecords() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read order log %s: %w", s.path, err)
	}
	if err := checkArray(data); err != nil {
		return nil, fmt.Errorf("decode order log %s: %w", s.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode order log %s: %w", s.path, err)
	}
	return records, nil
}

// writeRecords replaces the log through a temp file and rename so a crash
// leaves either the old or the new log on disk.
func (s *JSONOrderStore) writeRecords(records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode order log: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp order log: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write order log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync order log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close order log: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod order log: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace order log %s: %w", s.path, err)
	}
	return nil
}

func checkArray(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrNotArray
	}
	return nil
}
