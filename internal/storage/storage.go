package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

// ErrNotFound is returned when no result is stored for a key.
var ErrNotFound = errors.New("storage: not found")

// Key prefixes
const (
	prefixPerft  = "perft/"
	prefixDivide = "divide/"
	prefixRun    = "run/"
)

// RunRecord describes one completed perft run.
type RunRecord struct {
	ID       string        `json:"id"`
	FEN      string        `json:"fen"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Workers  int           `json:"workers"`
	Cached   bool          `json:"cached"`
	Duration time.Duration `json:"duration"`
	Finished time.Time     `json:"finished"`
}

// PerftStore wraps BadgerDB for perft results. Node counts are keyed by the
// position hash and depth; divide tables store one packed move and count per
// root move.
type PerftStore struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the store under dir. An empty dir resolves to the
// platform data directory.
func Open(dir string, log *slog.Logger) (*PerftStore, error) {
	dbDir, err := GetDatabaseDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve dir: %w", err)
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dbDir, err)
	}
	log.Debug("perft store opened", "dir", dbDir)
	return &PerftStore{db: db, log: log}, nil
}

// OpenInMemory returns a store that lives only as long as the process.
func OpenInMemory(log *slog.Logger) (*PerftStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open in-memory: %w", err)
	}
	return &PerftStore{db: db, log: log}, nil
}

// Close closes the database
func (s *PerftStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func resultKey(prefix string, hash uint64, depth int) []byte {
	key := make([]byte, len(prefix)+9)
	n := copy(key, prefix)
	binary.BigEndian.PutUint64(key[n:], hash)
	key[n+8] = byte(depth)
	return key
}

// SaveNodes stores the perft count for a position hash and depth.
func (s *PerftStore) SaveNodes(hash uint64, depth int, nodes uint64) error {
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], nodes)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resultKey(prefixPerft, hash, depth), val[:])
	})
}

// LoadNodes returns the stored perft count, or ErrNotFound.
func (s *PerftStore) LoadNodes(hash uint64, depth int) (uint64, error) {
	var nodes uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(prefixPerft, hash, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("storage: corrupt perft value (%d bytes)", len(val))
			}
			nodes = binary.BigEndian.Uint64(val)
			return nil
		})
	})
	return nodes, err
}

// SaveDivide stores per-root-move counts. Move scores are not persisted.
func (s *PerftStore) SaveDivide(hash uint64, depth int, entries []board.DivideEntry) error {
	val := make([]byte, 16*len(entries))
	for i, e := range entries {
		m := e.Move
		m.Score = 0
		binary.BigEndian.PutUint64(val[16*i:], uint64(m.Pack()))
		binary.BigEndian.PutUint64(val[16*i+8:], e.Nodes)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resultKey(prefixDivide, hash, depth), val)
	})
}

// LoadDivide returns the stored divide table, or ErrNotFound.
func (s *PerftStore) LoadDivide(hash uint64, depth int) ([]board.DivideEntry, error) {
	var entries []board.DivideEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(prefixDivide, hash, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val)%16 != 0 {
				return fmt.Errorf("storage: corrupt divide value (%d bytes)", len(val))
			}
			entries = make([]board.DivideEntry, len(val)/16)
			for i := range entries {
				entries[i] = board.DivideEntry{
					Move:  board.PackedMove(binary.BigEndian.Uint64(val[16*i:])).Unpack(),
					Nodes: binary.BigEndian.Uint64(val[16*i+8:]),
				}
			}
			return nil
		})
	})
	return entries, err
}

// SaveRun records a completed run.
func (s *PerftStore) SaveRun(rec RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixRun+rec.ID), data)
	})
}

// Runs returns every recorded run, most recent first.
func (s *PerftStore) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixRun)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec RunRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			runs = append(runs, rec)
		}
		return nil
	})
	sort.Slice(runs, func(i, j int) bool { return runs[i].Finished.After(runs[j].Finished) })
	return runs, err
}
