package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema creates the authority tables and the platform tables they read.
// Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS authority_person (
	id        BIGSERIAL PRIMARY KEY,
	uid       VARCHAR(256) NOT NULL UNIQUE,
	firstname VARCHAR(256) NOT NULL,
	lastname  VARCHAR(256) NOT NULL,
	created   DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS authority (
	id        BIGSERIAL PRIMARY KEY,
	"key"     VARCHAR(256) NOT NULL,
	"value"   VARCHAR(256) NOT NULL,
	person_id BIGINT REFERENCES authority_person(id),
	UNIQUE ("key", "value")
);

CREATE INDEX IF NOT EXISTS authority_person_id_idx ON authority(person_id);

CREATE TABLE IF NOT EXISTS epersongroup (
	id   BIGSERIAL PRIMARY KEY,
	name VARCHAR(256) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS epersongroup_member (
	group_id BIGINT NOT NULL REFERENCES epersongroup(id) ON DELETE CASCADE,
	email    VARCHAR(256) NOT NULL,
	PRIMARY KEY (group_id, email)
);

CREATE TABLE IF NOT EXISTS item (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	handle       VARCHAR(256) NOT NULL DEFAULT '',
	in_archive   BOOLEAN NOT NULL DEFAULT FALSE,
	withdrawn    BOOLEAN NOT NULL DEFAULT FALSE,
	discoverable BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS metadatavalue (
	id               BIGSERIAL PRIMARY KEY,
	resource_id      BIGINT NOT NULL,
	resource_type_id INTEGER NOT NULL,
	element          VARCHAR(64) NOT NULL,
	qualifier        VARCHAR(64),
	text_value       TEXT NOT NULL,
	authority        VARCHAR(256)
);

CREATE INDEX IF NOT EXISTS metadatavalue_authority_idx ON metadatavalue(authority, resource_type_id);
`

// EnsureSchema applies Schema
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
