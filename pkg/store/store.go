// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package store is the relational backbone of the ingestion engine: it
// owns the pgx connection pool, the cidr/parent/member/attr schema, and
// the nested-savepoint transaction idiom the Ingestion Worker uses to
// arbitrate races between concurrent writers.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rirdb-ingest/pkg/model"
)

const uniqueViolation = "23505"

// Store wraps a pooled Postgres connection.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and returns a ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// RunTx is the outer transaction a worker keeps open across a
// COMMIT_COUNT's worth of blocks. Every per-CIDR / per-parent write
// happens inside a nested savepoint obtained via Begin, mirroring the
// source's session.begin_nested() idiom: pgx opens a real SAVEPOINT
// when Begin is called on a transaction that is itself already open.
type RunTx struct {
	tx pgx.Tx
}

// BeginRun opens the outer transaction for a fresh COMMIT_COUNT window.
func (s *Store) BeginRun(ctx context.Context) (*RunTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin outer transaction: %w", err)
	}
	return &RunTx{tx: tx}, nil
}

// Commit commits the outer transaction.
func (r *RunTx) Commit(ctx context.Context) error {
	return r.tx.Commit(ctx)
}

// Rollback aborts the outer transaction.
func (r *RunTx) Rollback(ctx context.Context) error {
	return r.tx.Rollback(ctx)
}

// WriteOutcome classifies the result of a check-then-insert attempt.
type WriteOutcome int

const (
	Inserted WriteOutcome = iota
	Duplicate
	RaceDuplicate
)

// UpsertCidr implements §4.4's per-CIDR write loop: query for an
// existing row, and if absent, insert under a nested savepoint. A
// unique-violation during the insert means a peer worker won the race;
// that is reported as RaceDuplicate rather than an error.
func (s *Store) UpsertCidr(ctx context.Context, r *RunTx, rec model.CidrRecord) (WriteOutcome, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM cidr WHERE inetnum = $1::cidr AND autnum = $2)`,
		rec.Inetnum, rec.Autnum,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check existing cidr row: %w", err)
	}
	if exists {
		return Duplicate, nil
	}

	savepoint, err := r.tx.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("open savepoint: %w", err)
	}

	_, err = savepoint.Exec(ctx, `
		INSERT INTO cidr (inetnum, autnum, attr, netname, country, description, remarks, status, source, created, last_modified)
		VALUES ($1::cidr, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.Inetnum, rec.Autnum, rec.Attr, rec.Netname, rec.Country,
		rec.Description, rec.Remarks, rec.Status, rec.Source, rec.Created, rec.LastModified,
	)
	if err != nil {
		_ = savepoint.Rollback(ctx)
		if isUniqueViolation(err) {
			return RaceDuplicate, nil
		}
		log.Printf("ERROR: insert cidr row %s/%s: %v", rec.Inetnum, rec.Autnum, err)
		return 0, fmt.Errorf("insert cidr row: %w", err)
	}
	if err := savepoint.Commit(ctx); err != nil {
		return 0, fmt.Errorf("release savepoint: %w", err)
	}
	return Inserted, nil
}

// UpsertParent implements §4.4's parent/child write loops: check the
// composite key, then insert under a nested savepoint.
func (s *Store) UpsertParent(ctx context.Context, r *RunTx, rec model.ParentRecord) (WriteOutcome, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM parent WHERE parent = $1 AND parent_type = $2 AND child = $3 AND child_type = $4)`,
		rec.Parent, rec.ParentType, rec.Child, rec.ChildType,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check existing parent row: %w", err)
	}
	if exists {
		return Duplicate, nil
	}

	savepoint, err := r.tx.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("open savepoint: %w", err)
	}

	_, err = savepoint.Exec(ctx,
		`INSERT INTO parent (parent, parent_type, child, child_type) VALUES ($1, $2, $3, $4)`,
		rec.Parent, rec.ParentType, rec.Child, rec.ChildType,
	)
	if err != nil {
		_ = savepoint.Rollback(ctx)
		if isUniqueViolation(err) {
			return RaceDuplicate, nil
		}
		log.Printf("ERROR: insert parent row %+v: %v", rec, err)
		return 0, fmt.Errorf("insert parent row: %w", err)
	}
	if err := savepoint.Commit(ctx); err != nil {
		return 0, fmt.Errorf("release savepoint: %w", err)
	}
	return Inserted, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
