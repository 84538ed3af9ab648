// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package checkpoint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Store persists ingestion checkpoints in a BadgerDB database.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a checkpoint store at the given directory, creating it if
// needed. With inMemory true the path is ignored and nothing is persisted.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "checkpoint-store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a checkpoint for its collection, stamping UpdatedAt.
func (s *Store) Save(ctx context.Context, checkpoint *Checkpoint) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	checkpoint.UpdatedAt = time.Now().UTC()
	if err := tx.Set(makeKey(checkpoint.Collection), MarshalCheckpoint(checkpoint)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load retrieves the checkpoint for a collection.
// Returns nil, nil if no checkpoint exists.
func (s *Store) Load(ctx context.Context, collection string) (*Checkpoint, error) {
	var checkpoint *Checkpoint

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get(makeKey(collection))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		checkpoint, unmarshalErr = UnmarshalCheckpoint(val)
		return unmarshalErr
	})
	return checkpoint, err
}

// Clear removes the checkpoint for a collection. Called after a run
// completes so the next run starts from the beginning.
func (s *Store) Clear(ctx context.Context, collection string) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if err := tx.Delete(makeKey(collection)); err != nil {
		return err
	}
	return tx.Commit()
}

// makeKey generates the storage key for a collection's checkpoint.
func makeKey(collection string) []byte {
	return []byte(fmt.Sprintf("ingchkpt:%s", collection))
}
