package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyUserID       = "settings/userId"
	keyDescription  = "settings/description"
	keyMetadata     = "settings/metadata"
	keyAnonymous    = "settings/anonymous"
	keyLogLevel     = "settings/logLevel"
	keyTracking     = "tracking/enabled"
	keyTrackingOpts = "tracking/options"
	keyTrip         = "trip/options"
	keyTripStatus   = "trip/status"
	keyInstallID    = "device/installId"
	eventPrefix     = "events/"
)

// store persists SDK settings across restarts as JSON values in badger.
type store struct {
	db *badger.DB
}

// openStore opens the settings database in dir, or an in-memory one
// when dir is empty.
func openStore(dir string, logger *slog.Logger) (*store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{logger.With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("sim: open store: %w", err)
	}
	return &store{db: db}, nil
}

func (s *store) get(key string, dst any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sim: load %s: %w", key, err)
	}
	return true, nil
}

func (s *store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sim: encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *store) delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *store) close() error {
	return s.db.Close()
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
