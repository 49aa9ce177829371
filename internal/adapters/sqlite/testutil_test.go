// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/taskgate/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection so every query sees the same database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", db.DSN(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO users (username) VALUES (?)", username)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedProject inserts a test project owned by ownerID, enrolls the owner, and returns its ID.
func seedProject(t *testing.T, db *sql.DB, name string, ownerID int64) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO projects (name, owner_id) VALUES (?, ?)", name, ownerID)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	id, _ := res.LastInsertId()
	seedMember(t, db, id, ownerID)
	return id
}

// seedMember enrolls a user in a project.
func seedMember(t *testing.T, db *sql.DB, projectID, userID int64) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO project_members (project_id, user_id) VALUES (?, ?)", projectID, userID); err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
}

// seedWorkItem inserts a pending work item and returns its ID.
func seedWorkItem(t *testing.T, db *sql.DB, projectID, creatorID int64, title string) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO work_items (title, priority, deadline, creator_id, project_id) VALUES (?, 10, '2030-01-01 00:00:00', ?, ?)",
		title, creatorID, projectID,
	)
	if err != nil {
		t.Fatalf("failed to seed work item: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedRequest inserts a request and returns its ID.
func seedRequest(t *testing.T, db *sql.DB, kind string, requesterID, workItemID, projectID int64) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO operation_requests (kind, description, requester_id, work_item_id, project_id) VALUES (?, 'because', ?, ?, ?)",
		kind, requesterID, workItemID, projectID,
	)
	if err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}
