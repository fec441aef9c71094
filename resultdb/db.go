// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resultdb keeps a history of derived scaling series in a SQL
// database.
package resultdb

import (
	"bytes"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"text/template"

	"golang.org/x/net/context"

	"github.com/rforest/perfgraphs/threadseries"
)

// DB is a history of processed result folders. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun    *sql.Stmt
	insertSeries *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Folder VARCHAR(1024) NOT NULL
);
CREATE TABLE IF NOT EXISTS Series (
	RunID BIGINT UNSIGNED,
	Position INT NOT NULL,
	Dataset VARCHAR(255) NOT NULL,
	Threads INT NOT NULL,
	MeanSeconds DOUBLE NOT NULL,
	StdDev DOUBLE NOT NULL,
	Trials INT NOT NULL,
	BaselineThreads INT NOT NULL,
	Speedup DOUBLE,
	Efficiency DOUBLE,
	PRIMARY KEY (RunID, Position, Threads),
{{if not .sqlite3}}
	Index (Dataset(100)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS SeriesDataset ON Series(Dataset);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Folder) VALUES (?)")
	if err != nil {
		return err
	}
	db.insertSeries, err = db.sql.Prepare(`INSERT INTO Series(RunID, Position, Dataset, Threads, MeanSeconds, StdDev, Trials, BaselineThreads, Speedup, Efficiency)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	return nil
}

// InsertRun records the derived series of one processed folder and
// returns the new run's ID. Only thread counts with a sample are
// stored. Non-finite speedup and efficiency values are stored as
// NULL.
func (db *DB) InsertRun(ctx context.Context, folder string, ds []*threadseries.Derived) (id int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, folder)
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}

	ins := tx.StmtContext(ctx, db.insertSeries)
	for pos, d := range ds {
		s := d.Series
		for i, th := range s.Threads {
			sum := s.Samples[i]
			if sum == nil {
				continue
			}
			if _, err = ins.ExecContext(ctx, id, pos, s.Dataset, th, sum.Mean, sum.StdDev, sum.Trials,
				d.BaselineThreads, nullFloat(d.Speedup[i]), nullFloat(d.Efficiency[i])); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

func nullFloat(v threadseries.Value) sql.NullFloat64 {
	if !v.Present || math.IsInf(v.V, 0) || math.IsNaN(v.V) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v.V, Valid: true}
}

// A Point is one stored thread count of a dataset.
type Point struct {
	Dataset         string
	Threads         int
	MeanSeconds     float64
	StdDev          float64
	Trials          int
	BaselineThreads int
	Speedup         threadseries.Value
	Efficiency      threadseries.Value
}

// RunSeries returns the points stored for run id, in dataset order
// and then by increasing thread count.
func (db *DB) RunSeries(ctx context.Context, id int64) ([]Point, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT Dataset, Threads, MeanSeconds, StdDev, Trials, BaselineThreads, Speedup, Efficiency
FROM Series WHERE RunID = ? ORDER BY Position, Threads`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Point
	for rows.Next() {
		var p Point
		var sp, eff sql.NullFloat64
		if err := rows.Scan(&p.Dataset, &p.Threads, &p.MeanSeconds, &p.StdDev, &p.Trials, &p.BaselineThreads, &sp, &eff); err != nil {
			return nil, err
		}
		p.Speedup = threadseries.Value{V: sp.Float64, Present: sp.Valid}
		p.Efficiency = threadseries.Value{V: eff.Float64, Present: eff.Valid}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RunFolder returns the folder recorded for run id.
func (db *DB) RunFolder(ctx context.Context, id int64) (string, error) {
	var folder string
	err := db.sql.QueryRowContext(ctx, "SELECT Folder FROM Runs WHERE RunID = ?", id).Scan(&folder)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("run %d not found", id)
	}
	return folder, err
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertRun, db.insertSeries} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
