// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest provides test databases and run fixtures for
// resultdb.
package dbtest

import (
	"context"
	"flag"
	"fmt"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"

	"github.com/rforest/perfgraphs/perfcsv"
	"github.com/rforest/perfgraphs/resultdb"
	_ "github.com/rforest/perfgraphs/resultdb/sqlite3"
	"github.com/rforest/perfgraphs/threadseries"
)

var mysqlDSN = flag.String("mysql", "", "run against the empty MySQL database `dsn`, such as root:@cloudsql(project:region:instance)/perftest, instead of in-memory SQLite")

// NewDB opens an empty test database that is closed when t finishes.
// It is in-memory SQLite unless the -mysql flag names a database.
func NewDB(t *testing.T) *resultdb.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driverName, dataSourceName = "mysql", *mysqlDSN
	}
	db, err := resultdb.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open %s database: %v", driverName, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	if n, err := db.CountRuns(context.Background()); err != nil {
		t.Fatal(err)
	} else if n != 0 {
		t.Fatalf("%s database holds %d runs, want none", driverName, n)
	}
	return db
}

// Series derives the series of one dataset from trials written as
// "threads seconds", aligned to the canonical thread counts.
func Series(t *testing.T, dataset string, trials ...string) *threadseries.Derived {
	t.Helper()
	tab := &perfcsv.Table{Path: dataset + ".csv"}
	for _, trial := range trials {
		r := perfcsv.Result{Dataset: dataset}
		if _, err := fmt.Sscan(trial, &r.Threads, &r.TimeSeconds); err != nil {
			t.Fatalf("bad trial %q: %v", trial, err)
		}
		tab.Results = append(tab.Results, r)
	}
	return threadseries.Derive(threadseries.Aggregate(tab, nil))
}

// InsertRun records ds for folder and returns the run ID. It fails t
// if the run cannot be stored or its folder does not read back.
func InsertRun(t *testing.T, db *resultdb.DB, folder string, ds ...*threadseries.Derived) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := db.InsertRun(ctx, folder, ds)
	if err != nil {
		t.Fatalf("InsertRun(%s): %v", folder, err)
	}
	if got, err := db.RunFolder(ctx, id); err != nil || got != folder {
		t.Fatalf("RunFolder(%d) = %q, %v, want %q", id, got, err, folder)
	}
	return id
}
