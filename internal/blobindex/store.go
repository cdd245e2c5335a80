package blobindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jeffboody/osmdb/internal/record"

	_ "modernc.org/sqlite"
)

// BatchSize is the number of writes a single transaction absorbs before
// it is committed and a fresh one opened. Import runs touch the store
// far more often than any other caller, so batching keeps fsync pressure
// bounded without losing more than BatchSize operations to a crash.
const BatchSize = 10000

// store is the persistent layer: one SQLite table per record.Type plus
// tbl_attr holding the single changeset row. It owns the *sql.DB
// exclusively; no other package opens it directly.
type store struct {
	db       *sql.DB
	readOnly bool

	// statements are sharded by (type, reader thread) per the thread-tid
	// slot scheme: slot = record.NumTypes*tid + type. A nil entry is
	// filled in lazily by loadStmt/insertStmt on first use from a given
	// thread, so a READONLY open with nth worker threads prepares at
	// most record.NumTypes*nth statements.
	loadStmts   []*sql.Stmt
	insertStmts []*sql.Stmt
	maxThreads  int

	tx        *sql.Tx
	batchOps  int
	changeset int64
}

// openStore opens (or creates) the SQLite file at path and configures
// the session PRAGMAs required for a single-writer, unjournalled store:
// exclusive locking, no rollback journal (the store is rebuilt from the
// OSM extract on failure, never patched), and a local temp directory for
// any spill files SQLite needs during large sorts.
func openStore(path string, mode Mode, maxThreads int) (*store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("blobindex: open %s: %w", path, err)
	}
	if mode == ReadOnly {
		db.SetMaxOpenConns(maxThreads)
	} else {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=OFF",
		"PRAGMA locking_mode=EXCLUSIVE",
		"PRAGMA temp_store_directory='.'",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("blobindex: %s: %w", p, err)
		}
	}

	s := &store{
		db:          db,
		readOnly:    mode == ReadOnly,
		loadStmts:   make([]*sql.Stmt, record.NumTypes*max(maxThreads, 1)),
		insertStmts: make([]*sql.Stmt, record.NumTypes*max(maxThreads, 1)),
		maxThreads:  max(maxThreads, 1),
	}

	if mode == Create {
		if err := s.createSchema(); err != nil {
			db.Close()
			return nil, err
		}
	}

	changeset, err := s.readChangeset()
	if err != nil {
		db.Close()
		return nil, err
	}
	s.changeset = changeset

	return s, nil
}

func (s *store) createSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE tbl_attr (key TEXT UNIQUE, val TEXT)`); err != nil {
		return fmt.Errorf("blobindex: create tbl_attr: %w", err)
	}
	for t := record.Type(0); int(t) < record.NumTypes; t++ {
		stmt := fmt.Sprintf(`CREATE TABLE %s (id INTEGER PRIMARY KEY NOT NULL, blob BLOB)`, t.TableName())
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("blobindex: create table %s: %w", t.TableName(), err)
		}
	}
	return nil
}

// slot computes the thread-sharded prepared-statement index described in
// the concurrency model: OSMDB_TYPE_COUNT * tid + type.
func (s *store) slot(tid int, t record.Type) int {
	if tid >= s.maxThreads {
		tid = tid % s.maxThreads
	}
	return record.NumTypes*tid + int(t)
}

func (s *store) loadStmt(tid int, t record.Type) (*sql.Stmt, error) {
	idx := s.slot(tid, t)
	if stmt := s.loadStmts[idx]; stmt != nil {
		return stmt, nil
	}
	q := fmt.Sprintf(`SELECT blob FROM %s WHERE id = ?`, t.TableName())
	stmt, err := s.db.Prepare(q)
	if err != nil {
		return nil, fmt.Errorf("blobindex: prepare load %s: %w", t.TableName(), err)
	}
	s.loadStmts[idx] = stmt
	return stmt, nil
}

func (s *store) insertStmt(tid int, t record.Type) (*sql.Stmt, error) {
	idx := s.slot(tid, t)
	if stmt := s.insertStmts[idx]; stmt != nil {
		return stmt, nil
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, blob) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob`, t.TableName())
	stmt, err := s.db.Prepare(q)
	if err != nil {
		return nil, fmt.Errorf("blobindex: prepare insert %s: %w", t.TableName(), err)
	}
	s.insertStmts[idx] = stmt
	return stmt, nil
}

// load fetches the blob for (type, majorID), returning (nil, nil) when
// absent — a miss is not an error.
func (s *store) load(tid int, t record.Type, majorID int64) ([]byte, error) {
	stmt, err := s.loadStmt(tid, t)
	if err != nil {
		return nil, err
	}
	var blob []byte
	err = stmt.QueryRow(majorID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blobindex: load %s/%d: %w", t.TableName(), majorID, err)
	}
	return blob, nil
}

// write upserts (type, majorID, blob) inside the current batch
// transaction, opening one lazily and committing it once BatchSize
// operations have accumulated.
func (s *store) write(tid int, t record.Type, majorID int64, blob []byte) error {
	if s.readOnly {
		return fmt.Errorf("blobindex: write attempted on readonly store")
	}
	if err := s.ensureTx(); err != nil {
		return err
	}
	stmt, err := s.insertStmt(tid, t)
	if err != nil {
		return err
	}
	txStmt := s.tx.StmtContext(context.Background(), stmt)
	if _, err := txStmt.Exec(majorID, blob); err != nil {
		return fmt.Errorf("blobindex: write %s/%d: %w", t.TableName(), majorID, err)
	}
	s.batchOps++
	if s.batchOps >= BatchSize {
		return s.commitBatch()
	}
	return nil
}

func (s *store) ensureTx() error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("blobindex: begin transaction: %w", err)
	}
	s.tx = tx
	s.batchOps = 0
	return nil
}

// commitBatch commits the in-flight transaction, if any. It is called
// both when BatchSize is reached and explicitly at shutdown / after an
// eviction pass, matching the "explicit end transaction" requirement.
func (s *store) commitBatch() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	s.batchOps = 0
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("blobindex: commit: %w", err)
	}
	return nil
}

func (s *store) readChangeset() (int64, error) {
	row := s.db.QueryRow(`SELECT val FROM tbl_attr WHERE key = 'changeset'`)
	var val string
	err := row.Scan(&val)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("blobindex: read changeset: %w", err)
	}
	var changeset int64
	if _, err := fmt.Sscanf(val, "%d", &changeset); err != nil {
		return 0, fmt.Errorf("blobindex: parse changeset %q: %w", val, err)
	}
	return changeset, nil
}

// writeChangeset persists the running maximum changeset observed during
// import. Called once at the end of the stream, not per-entity.
func (s *store) writeChangeset(changeset int64) error {
	if s.readOnly {
		return fmt.Errorf("blobindex: writeChangeset attempted on readonly store")
	}
	if err := s.ensureTx(); err != nil {
		return err
	}
	_, err := s.tx.Exec(`INSERT INTO tbl_attr (key, val) VALUES ('changeset', ?)
		ON CONFLICT(key) DO UPDATE SET val = excluded.val`, fmt.Sprintf("%d", changeset))
	if err != nil {
		return fmt.Errorf("blobindex: write changeset: %w", err)
	}
	s.changeset = changeset
	return nil
}

// close commits any open transaction and releases the database handle.
func (s *store) close() error {
	if err := s.commitBatch(); err != nil {
		return err
	}
	return s.db.Close()
}

// removeIfExists deletes path before a Create open, since SQLite refuses
// to reuse a file with an incompatible schema from a prior run.
func removeIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return nil
}
