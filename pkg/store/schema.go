// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package store

import "context"

// schemaDDL creates the cidr/parent/member/attr tables. inetnum uses
// Postgres's native CIDR type, resolving the ambiguity spec.md's Open
// Questions flag: the downstream longest-prefix query needs `>>`/`<<`
// operator support that a text column would not give it.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS cidr (
	inetnum       cidr        NOT NULL,
	autnum        text        NOT NULL DEFAULT '',
	attr          text        NOT NULL,
	netname       text,
	country       text,
	description   text,
	remarks       text,
	status        text,
	source        text,
	created       text,
	last_modified text,
	PRIMARY KEY (inetnum, autnum)
);

CREATE INDEX IF NOT EXISTS ix_cidr_attr          ON cidr (attr);
CREATE INDEX IF NOT EXISTS ix_cidr_autnum         ON cidr (autnum);
CREATE INDEX IF NOT EXISTS ix_cidr_netname        ON cidr (netname);
CREATE INDEX IF NOT EXISTS ix_cidr_country         ON cidr (country);
CREATE INDEX IF NOT EXISTS ix_cidr_status          ON cidr (status);
CREATE INDEX IF NOT EXISTS ix_cidr_source          ON cidr (source);
CREATE INDEX IF NOT EXISTS ix_cidr_created         ON cidr (created);
CREATE INDEX IF NOT EXISTS ix_cidr_last_modified   ON cidr (last_modified);
CREATE INDEX IF NOT EXISTS ix_cidr_description ON cidr USING gin (to_tsvector('english', coalesce(description, '')));

CREATE TABLE IF NOT EXISTS parent (
	parent      text NOT NULL,
	parent_type text NOT NULL,
	child       text NOT NULL,
	child_type  text NOT NULL,
	PRIMARY KEY (parent, parent_type, child, child_type)
);

CREATE INDEX IF NOT EXISTS ix_parent_parent ON parent (parent);
CREATE INDEX IF NOT EXISTS ix_parent_child  ON parent (child);

-- member/attr reserve the schema for mntner/person/role/organisation/irt
-- and aut-num/as-set/route-set/domain objects. No ingestion path writes
-- to them by default; pkg/store.MemberSink and AttrSink exist so a
-- caller can wire them in without touching the cidr/parent hot path.
CREATE TABLE IF NOT EXISTS member (
	idd         text NOT NULL UNIQUE,
	attr        text NOT NULL,
	name        text NOT NULL,
	description text,
	remarks     text,
	PRIMARY KEY (idd)
);

CREATE INDEX IF NOT EXISTS ix_member_name ON member (name);
CREATE INDEX IF NOT EXISTS ix_member_description ON member USING gin (to_tsvector('english', coalesce(description, '')));

CREATE TABLE IF NOT EXISTS attr (
	name        text NOT NULL,
	attr        text NOT NULL,
	description text,
	remarks     text,
	PRIMARY KEY (name, attr)
);

CREATE INDEX IF NOT EXISTS ix_attr_remarks ON attr (remarks);
CREATE INDEX IF NOT EXISTS ix_attr_description ON attr USING gin (to_tsvector('english', coalesce(description, '')));
`

const dropAllDDL = `
DROP TABLE IF EXISTS cidr CASCADE;
DROP TABLE IF EXISTS parent CASCADE;
DROP TABLE IF EXISTS member CASCADE;
DROP TABLE IF EXISTS attr CASCADE;
`

// EnsureSchema creates the schema if it doesn't exist. When reset is
// true, every table is dropped first, matching --reset_db.
func (s *Store) EnsureSchema(ctx context.Context, reset bool) error {
	if reset {
		if _, err := s.pool.Exec(ctx, dropAllDDL); err != nil {
			return err
		}
	}
	_, err := s.pool.Exec(ctx, schemaDDL)
	return err
}
