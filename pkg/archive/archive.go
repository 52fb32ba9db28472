// Package archive keeps every saved container in a hash-chained SQLite
// table so a save can be restored or audited later.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"netrunner/pkg/core"
)

var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrBrokenChain = errors.New("snapshot chain broken")
)

const schema = `
CREATE TABLE IF NOT EXISTS system_meta (key TEXT PRIMARY KEY, value TEXT);

CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tick INTEGER NOT NULL,
	saved_at TEXT NOT NULL,
	state_blob BLOB NOT NULL,
	prev_hash TEXT NOT NULL,
	final_hash TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_tick ON snapshots(tick);
`

// Snapshot is one archived save container.
type Snapshot struct {
	ID        int64
	Tick      uint64
	SavedAt   time.Time
	Size      int64
	Blob      []byte
	PrevHash  string
	FinalHash string
}

type Archive struct {
	db  *sql.DB
	log *log.Logger
}

// SeedTag is the genesis link of a world's chain.
func SeedTag(seed int64) string {
	return core.Hash([]byte(fmt.Sprintf("netrunner-world-%d", seed)))
}

// Open creates the database file and schema if needed.
func Open(path string, logger *log.Logger) (*Archive, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Archive{db: db, log: logger}, nil
}

func (a *Archive) Close() error { return a.db.Close() }

// genesis returns the chain's first link, pinning it to seed on the first
// call.
func (a *Archive) genesis(seed int64) (string, error) {
	var g string
	err := a.db.QueryRow("SELECT value FROM system_meta WHERE key='genesis_hash'").Scan(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	g = SeedTag(seed)
	if _, err := a.db.Exec("INSERT INTO system_meta (key, value) VALUES ('genesis_hash', ?)", g); err != nil {
		return "", err
	}
	return g, nil
}

// Record appends a container to the chain.
func (a *Archive) Record(blob []byte, tick uint64, savedAt time.Time, seed int64) (*Snapshot, error) {
	var prevHash string
	err := a.db.QueryRow("SELECT final_hash FROM snapshots ORDER BY id DESC LIMIT 1").Scan(&prevHash)
	if errors.Is(err, sql.ErrNoRows) {
		prevHash, err = a.genesis(seed)
	}
	if err != nil {
		return nil, fmt.Errorf("chain head: %w", err)
	}

	s := &Snapshot{
		Tick:      tick,
		SavedAt:   savedAt.UTC(),
		Size:      int64(len(blob)),
		Blob:      blob,
		PrevHash:  prevHash,
		FinalHash: core.ChainHash(blob, prevHash),
	}
	res, err := a.db.Exec(
		"INSERT INTO snapshots (tick, saved_at, state_blob, prev_hash, final_hash) VALUES (?, ?, ?, ?, ?)",
		int64(s.Tick), s.SavedAt.Format(time.RFC3339Nano), s.Blob, s.PrevHash, s.FinalHash)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	a.log.Printf("Snapshot %d at tick %d. Size: %s. Hash: %s", s.ID, tick, humanize.Bytes(uint64(len(blob))), s.FinalHash)
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, withBlob bool) (*Snapshot, error) {
	var (
		s       Snapshot
		tick    int64
		savedAt string
	)
	dest := []any{&s.ID, &tick, &savedAt, &s.PrevHash, &s.FinalHash, &s.Size}
	if withBlob {
		dest = append(dest, &s.Blob)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Tick = uint64(tick)
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d saved_at: %w", s.ID, err)
	}
	s.SavedAt = t
	return &s, nil
}

// List returns snapshot metadata, oldest first. Blobs are not loaded.
func (a *Archive) List() ([]*Snapshot, error) {
	rows, err := a.db.Query("SELECT id, tick, saved_at, prev_hash, final_hash, length(state_blob) FROM snapshots ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *Archive) Get(id int64) (*Snapshot, error) {
	row := a.db.QueryRow("SELECT id, tick, saved_at, prev_hash, final_hash, length(state_blob), state_blob FROM snapshots WHERE id = ?", id)
	s, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s, err
}

// Verify walks the chain from genesis and returns the number of intact
// links. The first broken link is reported as ErrBrokenChain.
func (a *Archive) Verify() (int, error) {
	var expect string
	err := a.db.QueryRow("SELECT value FROM system_meta WHERE key='genesis_hash'").Scan(&expect)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	rows, err := a.db.Query("SELECT id, tick, saved_at, prev_hash, final_hash, length(state_blob), state_blob FROM snapshots ORDER BY id")
	if err != nil {
		return 0, fmt.Errorf("verify snapshots: %w", err)
	}
	defer rows.Close()

	checked := 0
	for rows.Next() {
		s, err := scanSnapshot(rows, true)
		if err != nil {
			return checked, err
		}
		if s.PrevHash != expect {
			return checked, fmt.Errorf("%w: snapshot %d does not follow its predecessor", ErrBrokenChain, s.ID)
		}
		if core.ChainHash(s.Blob, s.PrevHash) != s.FinalHash {
			return checked, fmt.Errorf("%w: snapshot %d hash mismatch", ErrBrokenChain, s.ID)
		}
		expect = s.FinalHash
		checked++
	}
	return checked, rows.Err()
}
