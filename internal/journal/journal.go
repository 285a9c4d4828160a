package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/campusqa/peerboard/pkg/logger"
	"go.uber.org/zap"
)

// Action is the cascade type a journal entry records.
type Action string

const (
	ActionMute   Action = "mute"
	ActionUnmute Action = "unmute"
	// actionApplied closes an earlier entry once its cascade committed.
	actionApplied Action = "applied"
)

// Entry records a mute/unmute cascade intent before the database
// transaction runs. An "applied" record referencing the entry id is
// appended once the transaction commits; entries without one are pending
// and get replayed on startup.
type Entry struct {
	EntryID   string    `json:"entry_id"`
	Username  string    `json:"username"`
	Action    Action    `json:"action"`
	Ref       string    `json:"ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal is an append-only, fsync-on-write file of cascade intents.
type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// New opens (or creates) the journal file.
func New(filePath string) (*Journal, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes an entry and syncs it to disk before returning, so a crash
// after Append can always recover the intent.
func (j *Journal) Append(entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.appendUnsafe(entry)
}

func (j *Journal) appendUnsafe(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("journal: failed to marshal entry",
			zap.String("entry_id", entry.EntryID),
			zap.Error(err),
		)
		return err
	}

	if _, err := j.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("journal: failed to write entry",
			zap.String("entry_id", entry.EntryID),
			zap.Error(err),
		)
		return err
	}

	if err := j.file.Sync(); err != nil {
		logger.Log.Error("journal: failed to sync to disk",
			zap.String("entry_id", entry.EntryID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// MarkApplied closes an entry after its cascade transaction committed.
func (j *Journal) MarkApplied(entryID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.appendUnsafe(Entry{
		EntryID:   entryID + ":applied",
		Action:    actionApplied,
		Ref:       entryID,
		Timestamp: time.Now(),
	})
}

// Pending returns entries whose cascade never committed, in append order.
func (j *Journal) Pending() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAllUnsafe()
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool)
	for _, e := range entries {
		if e.Action == actionApplied {
			applied[e.Ref] = true
		}
	}

	var pending []Entry
	for _, e := range entries {
		if e.Action == actionApplied {
			continue
		}
		if !applied[e.EntryID] {
			pending = append(pending, e)
		}
	}

	return pending, nil
}

// Compact rewrites the journal keeping only pending entries, dropping
// completed intent/applied pairs.
func (j *Journal) Compact() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAllUnsafe()
	if err != nil {
		logger.Log.Error("journal: failed to read entries for compaction",
			zap.Error(err),
		)
		return err
	}

	applied := make(map[string]bool)
	for _, e := range entries {
		if e.Action == actionApplied {
			applied[e.Ref] = true
		}
	}

	var remaining []Entry
	for _, e := range entries {
		if e.Action == actionApplied || applied[e.EntryID] {
			continue
		}
		remaining = append(remaining, e)
	}

	if err := j.file.Close(); err != nil {
		logger.Log.Error("journal: failed to close file for compaction",
			zap.Error(err),
		)
		return err
	}

	tempFile := j.filePath + ".tmp"

	// On any failure past this point the temp file is discarded and the
	// old journal reopened untouched: a half-written rewrite must never
	// replace recovery state.
	abort := func(err error) error {
		os.Remove(tempFile)
		reopened, openErr := os.OpenFile(j.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
		if openErr != nil {
			logger.Log.Error("journal: failed to reopen file after aborted compaction",
				zap.String("file_path", j.filePath),
				zap.Error(openErr),
			)
			return openErr
		}
		j.file = reopened
		return err
	}

	f, err := os.Create(tempFile)
	if err != nil {
		logger.Log.Error("journal: failed to create temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return abort(err)
	}

	for _, e := range remaining {
		data, err := json.Marshal(e)
		if err != nil {
			f.Close()
			return abort(err)
		}
		if _, err := f.WriteString(string(data) + "\n"); err != nil {
			logger.Log.Error("journal: failed to write compacted entry",
				zap.String("entry_id", e.EntryID),
				zap.Error(err),
			)
			f.Close()
			return abort(err)
		}
	}

	if err := f.Sync(); err != nil {
		logger.Log.Error("journal: failed to sync compacted file",
			zap.Error(err),
		)
		f.Close()
		return abort(err)
	}
	if err := f.Close(); err != nil {
		return abort(err)
	}

	// Replace old file with new one (atomic)
	if err := os.Rename(tempFile, j.filePath); err != nil {
		logger.Log.Error("journal: failed to rename temp file",
			zap.String("temp_file", tempFile),
			zap.Error(err),
		)
		return abort(err)
	}

	newFile, err := os.OpenFile(j.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		logger.Log.Error("journal: failed to reopen file after compaction",
			zap.String("file_path", j.filePath),
			zap.Error(err),
		)
		return err
	}
	j.file = newFile

	logger.Log.Info("journal: compaction completed",
		zap.Int("before_count", len(entries)),
		zap.Int("remaining_count", len(remaining)),
	)

	return nil
}

func (j *Journal) readAllUnsafe() ([]Entry, error) {
	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
