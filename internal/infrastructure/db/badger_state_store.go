package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// The two logical keys this service persists.
const (
	ratesKey     = "currency:rates"
	selectionKey = "currency:selection"
)

// BadgerStateStore persists the rate snapshot and display selection so a
// restart can render monetary values before the first fetch completes.
// A missing or undecodable record loads as nil, never as a startup failure.
type BadgerStateStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// NewBadgerStateStore creates a BadgerDB-backed state store.
func NewBadgerStateStore(db *badger.DB, log *zap.Logger) *BadgerStateStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &BadgerStateStore{db: db, logger: log}
}

// SaveRates overwrites the persisted rate snapshot.
func (s *BadgerStateStore) SaveRates(ctx context.Context, snapshot entity.RateSnapshot) error {
	return s.save(ratesKey, snapshot)
}

// LoadRates returns the persisted snapshot, or nil when absent or corrupt.
func (s *BadgerStateStore) LoadRates(ctx context.Context) (*entity.RateSnapshot, error) {
	var snapshot entity.RateSnapshot
	found, err := s.load(ratesKey, &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

// SaveSelection overwrites the persisted display selection.
func (s *BadgerStateStore) SaveSelection(ctx context.Context, selection entity.Selection) error {
	return s.save(selectionKey, selection)
}

// LoadSelection returns the persisted selection, or nil when absent or corrupt.
func (s *BadgerStateStore) LoadSelection(ctx context.Context) (*entity.Selection, error) {
	var selection entity.Selection
	found, err := s.load(selectionKey, &selection)
	if err != nil || !found {
		return nil, err
	}
	return &selection, nil
}

func (s *BadgerStateStore) save(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// load hydrates value from the stored record. Absence and corruption both
// report found=false: the caller starts from defaults either way.
func (s *BadgerStateStore) load(key string, value interface{}) (bool, error) {
	var raw []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, value); err != nil {
		s.logger.Warn("discarding corrupt stored state",
			zap.String("key", key),
			zap.Error(err))
		return false, nil
	}

	return true, nil
}
