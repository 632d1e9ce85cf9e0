// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package store

import (
	"context"
	"fmt"

	"rirdb-ingest/pkg/model"
)

// Sink accepts rows for a table the core ingestion path does not
// populate. member/attr are reserved-but-dormant per spec.md's Open
// Questions; a caller that wants mntner/person/role/organisation/irt
// or aut-num/as-set/route-set/domain ingestion wires one of these into
// the worker loop instead of modifying it.
type Sink interface {
	Put(ctx context.Context, tx *RunTx) error
}

// MemberSink inserts into the `member` table.
type MemberSink struct {
	Record model.MemberRecord
}

func (m MemberSink) Put(ctx context.Context, r *RunTx) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO member (idd, attr, name, description, remarks) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (idd) DO NOTHING`,
		m.Record.IDD, m.Record.Attr, m.Record.Name, m.Record.Description, m.Record.Remarks,
	)
	if err != nil {
		return fmt.Errorf("insert member row %s: %w", m.Record.IDD, err)
	}
	return nil
}

// AttrSink inserts into the `attr` table.
type AttrSink struct {
	Record model.AttrRecord
}

func (a AttrSink) Put(ctx context.Context, r *RunTx) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO attr (name, attr, description, remarks) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name, attr) DO NOTHING`,
		a.Record.Name, a.Record.Attr, a.Record.Description, a.Record.Remarks,
	)
	if err != nil {
		return fmt.Errorf("insert attr row %s: %w", a.Record.Name, err)
	}
	return nil
}
