package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/sitemaster/dpr/internal/db"
)

// FailingWriteUoW runs transactions against DB but fails the first write
// whose SQL contains Match, returning Err. The status update path inserts a
// history row and then updates the record, so matching "UPDATE dpr_records"
// fails after the history row is written and exercises the rollback.
type FailingWriteUoW struct {
	DB    *sql.DB
	Match string
	Err   error

	mu    sync.Mutex
	execs []string
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if fnErr := fn(ctx, &failingWriteTx{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Writes returns the leading keyword and table of every write attempted so
// far, e.g. "INSERT INTO status_history", in order.
func (u *FailingWriteUoW) Writes() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.execs...)
}

type failingWriteTx struct {
	db.DBTX
	uow *FailingWriteUoW
}

func (f *failingWriteTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.uow.mu.Lock()
	f.uow.execs = append(f.uow.execs, writeLabel(query))
	f.uow.mu.Unlock()

	if f.uow.Match != "" && strings.Contains(query, f.uow.Match) {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func writeLabel(query string) string {
	fields := strings.Fields(query)
	switch {
	case len(fields) >= 3 && strings.EqualFold(fields[0], "INSERT"):
		return strings.Join(fields[:3], " ")
	case len(fields) >= 2:
		return strings.Join(fields[:2], " ")
	default:
		return query
	}
}
