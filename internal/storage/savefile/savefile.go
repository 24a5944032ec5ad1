// Package savefile persists game state to versioned JSON files on local
// disk. It is the durable-storage adapter for single-player sessions.
package savefile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/game/state"
)

// CurrentVersion is the schema version written into every save record.
const CurrentVersion = "1.0.0"

// Record is the on-disk save envelope. Its JSON shape is a compatibility
// contract with existing save files and must not change.
type Record struct {
	// Version is the schema version the record was written with.
	Version string `json:"version"`
	// GameState is the full serialized game state.
	GameState state.GameState `json:"gameState"`
	// SavedAt is the save time in epoch milliseconds.
	SavedAt int64 `json:"savedAt"`
}

// Store reads and writes save records under a single directory, one file
// per save slot.
//
// Storage failures never propagate to callers. Save drops the write and
// logs it, Load reports "no save". The game must stay playable with a
// broken disk.
type Store struct {
	dir string
	log *zap.Logger
	now func() time.Time
}

// NewStore creates the save directory if needed and returns a Store over it.
//
// Precondition: log is non-nil.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

// Save writes gs to the given slot, overwriting any prior record.
//
// Postcondition: On success the slot holds a record tagged with
// CurrentVersion and the current time. On failure the prior record, if
// any, is left intact.
func (s *Store) Save(slot string, gs state.GameState) {
	rec := Record{
		Version:   CurrentVersion,
		GameState: gs,
		SavedAt:   s.now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Error("failed to serialize save record", zap.String("slot", slot), zap.Error(err))
		return
	}

	// Write to a temp file and rename so a crash mid-write cannot leave a
	// truncated save behind.
	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		s.log.Error("failed to create save file", zap.String("slot", slot), zap.Error(err))
		return
	}
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmp.Name())
		s.log.Error("failed to write save file", zap.String("slot", slot), zap.Error(err))
		return
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		s.log.Error("failed to replace save file", zap.String("slot", slot), zap.Error(err))
		return
	}
	s.log.Debug("game saved", zap.String("slot", slot), zap.Int("turn", gs.Turn))
}

// Load returns the game state stored in the given slot.
//
// The second return value is false when no save exists or the record is
// unreadable. A version mismatch is logged but the state is still returned
// as-is; no schema migration is performed.
func (s *Store) Load(slot string) (state.GameState, bool) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("failed to read save file", zap.String("slot", slot), zap.Error(err))
		}
		return state.GameState{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Error("failed to parse save file", zap.String("slot", slot), zap.Error(err))
		return state.GameState{}, false
	}
	if rec.Version != CurrentVersion {
		s.log.Warn("save file version mismatch, loading as-is",
			zap.String("slot", slot),
			zap.String("saved", rec.Version),
			zap.String("current", CurrentVersion))
	}
	return rec.GameState, true
}

// HasSave reports whether a record exists for the slot without reading it.
func (s *Store) HasSave(slot string) bool {
	_, err := os.Stat(s.path(slot))
	return err == nil
}

// ClearSave removes the record for the slot. Removing a slot with no save
// is a no-op.
func (s *Store) ClearSave(slot string) {
	if err := os.Remove(s.path(slot)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Error("failed to clear save file", zap.String("slot", slot), zap.Error(err))
		return
	}
	s.log.Debug("save cleared", zap.String("slot", slot))
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}
