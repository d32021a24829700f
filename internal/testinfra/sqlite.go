// Package testinfra opens throwaway SQLite databases shaped like the
// production Postgres schema.
package testinfra

import (
	"testing"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// AdminGroup is the administrator group name seeded by SeedAdmin
const AdminGroup = "Administrator"

// Schema is the SQLite flavour of postgres.Schema
const Schema = `
CREATE TABLE authority_person (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	uid       VARCHAR(256) NOT NULL UNIQUE,
	firstname VARCHAR(256) NOT NULL,
	lastname  VARCHAR(256) NOT NULL,
	created   DATE NOT NULL
);

CREATE TABLE authority (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	"key"     VARCHAR(256) NOT NULL,
	"value"   VARCHAR(256) NOT NULL,
	person_id INTEGER REFERENCES authority_person(id),
	UNIQUE ("key", "value")
);

CREATE TABLE epersongroup (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(256) NOT NULL UNIQUE
);

CREATE TABLE epersongroup_member (
	group_id INTEGER NOT NULL REFERENCES epersongroup(id),
	email    VARCHAR(256) NOT NULL,
	PRIMARY KEY (group_id, email)
);

CREATE TABLE item (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL DEFAULT '',
	handle       VARCHAR(256) NOT NULL DEFAULT '',
	in_archive   BOOLEAN NOT NULL DEFAULT 0,
	withdrawn    BOOLEAN NOT NULL DEFAULT 0,
	discoverable BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE metadatavalue (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	resource_id      INTEGER NOT NULL,
	resource_type_id INTEGER NOT NULL,
	element          VARCHAR(64) NOT NULL,
	qualifier        VARCHAR(64),
	text_value       TEXT NOT NULL,
	authority        VARCHAR(256)
);
`

// OpenDB returns an in-memory database with the schema applied.
// It is closed when the test ends.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

// SeedAdmin adds email to the administrator group
func SeedAdmin(t testing.TB, db *sqlx.DB, email string) {
	t.Helper()
	SeedGroupMember(t, db, AdminGroup, email)
}

// SeedGroupMember adds email to group, creating the group when needed
func SeedGroupMember(t testing.TB, db *sqlx.DB, group, email string) {
	t.Helper()

	_, err := db.Exec(`INSERT OR IGNORE INTO epersongroup (name) VALUES (?)`, group)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO epersongroup_member (group_id, email)
		SELECT id, ? FROM epersongroup WHERE name = ?
	`, email, group)
	require.NoError(t, err)
}

// SeedItem inserts item and returns its id
func SeedItem(t testing.TB, db *sqlx.DB, item domain.Item) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowx(`
		INSERT INTO item (name, handle, in_archive, withdrawn, discoverable)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, item.Name, item.Handle, item.InArchive, item.Withdrawn, item.Discoverable).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedMetadata attaches a metadata value to an item. An empty authority is
// stored as NULL.
func SeedMetadata(t testing.TB, db *sqlx.DB, itemID int64, element, value, authority string) {
	t.Helper()

	var auth *string
	if authority != "" {
		auth = &authority
	}
	_, err := db.Exec(`
		INSERT INTO metadatavalue (resource_id, resource_type_id, element, text_value, authority)
		VALUES (?, ?, ?, ?, ?)
	`, itemID, domain.ResourceTypeItem, element, value, auth)
	require.NoError(t, err)
}
