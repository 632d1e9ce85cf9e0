package checkpoint

import (
	"path/filepath"
	"testing"
)

func TestLedgerMarkAndCheck(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "ledger"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	done, err := l.IsFileDone("arin.db.gz")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Fatal("file should not be marked done yet")
	}

	if err := l.MarkFileDone("arin.db.gz", 1234); err != nil {
		t.Fatal(err)
	}

	done, err = l.IsFileDone("arin.db.gz")
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("file should be marked done")
	}

	if err := l.Forget("arin.db.gz"); err != nil {
		t.Fatal(err)
	}
	done, err = l.IsFileDone("arin.db.gz")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Fatal("file should no longer be marked done after Forget")
	}
}
