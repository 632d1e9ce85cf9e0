package orchestrator

import (
	"context"
	"testing"

	"rirdb-ingest/pkg/model"
)

func TestRunSkipsMissingFiles(t *testing.T) {
	o := New(model.Config{DownloadsDir: t.TempDir()}, nil, nil)
	stats, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Files != 0 || stats.Blocks != 0 {
		t.Errorf("stats = %+v, want zero files/blocks when nothing exists", stats)
	}
}

func TestInputFileOrder(t *testing.T) {
	want := []string{
		"afrinic.db.gz",
		"apnic.db.inetnum.gz",
		"arin.db.gz",
		"lacnic.db.gz",
		"ripe.db.inetnum.gz",
		"apnic.db.inet6num.gz",
		"ripe.db.inet6num.gz",
	}
	if len(inputFiles) != len(want) {
		t.Fatalf("inputFiles has %d entries, want %d", len(inputFiles), len(want))
	}
	for i, name := range want {
		if inputFiles[i] != name {
			t.Errorf("inputFiles[%d] = %q, want %q", i, inputFiles[i], name)
		}
	}
}
