package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when JournalEntry format changes
const journalSchemaVersion uint16 = 1

// Journal keeps the last run per project on disk so it can be audited later.
// Thread-safe for concurrent access.
type Journal struct {
	mu  sync.RWMutex
	dir string
}

// JournalEntry is the persisted record of one run.
type JournalEntry struct {
	Schema     uint16
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Suffix     string
	Status     string
	Error      string
	Cycles     []JournalCycle
}

// JournalCycle is one cycle of a journaled run.
type JournalCycle struct {
	Index    int
	Messages int
	Files    []JournalFile
}

// JournalFile lists the anchors planned for a file and what became of them.
type JournalFile struct {
	Path    string
	Anchors []JournalAnchor
	Applied int
	Skipped int
	Written bool
}

// JournalAnchor is a single planned rewrite.
type JournalAnchor struct {
	Category string
	Start    uint32
	End      uint32
}

// OpenJournal initializes and returns a journal at the standard cache location.
func OpenJournal(app string) (*Journal, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewJournal(filepath.Join(base, app, "journal")), nil
}

// NewJournal returns a journal stored under dir. The directory is created on
// first write.
func NewJournal(dir string) *Journal {
	return &Journal{dir: dir}
}

// Dir returns the directory entries are stored in.
func (j *Journal) Dir() string {
	if j == nil {
		return ""
	}
	return j.dir
}

func (j *Journal) pathFor(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(j.dir, hex.EncodeToString(sum[:])+".mp")
}

// Put serializes and writes the entry, replacing the previous run of its root.
func (j *Journal) Put(entry *JournalEntry) error {
	if j == nil || entry == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.pathFor(entry.Root)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	entry.Schema = journalSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads the last run recorded for root. ok is false when there is none
// or it was written by an incompatible version.
func (j *Journal) Get(root string) (entry *JournalEntry, ok bool, err error) {
	if j == nil {
		return nil, false, nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	// #nosec G304 -- path is derived from a hash inside the journal directory
	f, err := os.Open(j.pathFor(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e JournalEntry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decode journal: %w", err)
	}
	if e.Schema != journalSchemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// NewJournalEntry converts a run into its journal form.
func NewJournalEntry(cfg Config, res *Result, started time.Time, runErr error) *JournalEntry {
	entry := &JournalEntry{
		Root:       cfg.Root,
		StartedAt:  started,
		FinishedAt: time.Now(),
		DryRun:     cfg.DryRun,
		Suffix:     cfg.Suffix,
	}
	if runErr != nil {
		entry.Status = "failed"
		entry.Error = runErr.Error()
	} else if res != nil {
		entry.Status = res.Status.String()
	}
	if res == nil {
		return entry
	}

	for _, c := range res.Cycles {
		jc := JournalCycle{Index: c.Index, Messages: c.Messages}
		changes := make(map[string]int, len(c.Changes))
		for i, ch := range c.Changes {
			changes[ch.Path] = i
		}
		for _, file := range c.Plan.Files() {
			jf := JournalFile{Path: file}
			for _, rw := range c.Plan[file] {
				r := rw.Range()
				jf.Anchors = append(jf.Anchors, JournalAnchor{
					Category: rw.Category().String(),
					Start:    r.Start,
					End:      r.End,
				})
			}
			if i, ok := changes[file]; ok {
				ch := c.Changes[i]
				jf.Applied, jf.Skipped, jf.Written = ch.Applied, ch.Skipped, ch.Written
			}
			jc.Files = append(jc.Files, jf)
		}
		entry.Cycles = append(entry.Cycles, jc)
	}
	return entry
}
