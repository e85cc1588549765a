package journal

import (
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndLastBatch(t *testing.T) {
	j := openTest(t)

	moves := []Move{
		{SourcePath: "/tv/a.mkv", DestPath: "/tv/Show - S01E01.mkv"},
		{SourcePath: "/tv/b.mkv", DestPath: "/tv/Show - S01E02.mkv"},
	}
	id, err := j.RecordBatch("Show", moves)
	if err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero batch id")
	}

	b, err := j.LastBatch()
	if err != nil {
		t.Fatalf("LastBatch failed: %v", err)
	}
	if b == nil {
		t.Fatal("expected a batch")
	}
	if b.ID != id || b.Show != "Show" {
		t.Errorf("unexpected batch: %+v", b)
	}
	if len(b.Moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(b.Moves))
	}
	// Execution order preserved
	if b.Moves[0].SourcePath != "/tv/a.mkv" {
		t.Errorf("moves out of order: %+v", b.Moves)
	}
}

func TestLastBatchEmpty(t *testing.T) {
	j := openTest(t)

	b, err := j.LastBatch()
	if err != nil {
		t.Fatalf("LastBatch failed: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil batch, got %+v", b)
	}
}

func TestRecordEmptyBatchRefused(t *testing.T) {
	j := openTest(t)

	if _, err := j.RecordBatch("Show", nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestMarkUndone(t *testing.T) {
	j := openTest(t)

	id1, err := j.RecordBatch("Show", []Move{{SourcePath: "/tv/a.mkv", DestPath: "/tv/x.mkv"}})
	if err != nil {
		t.Fatal(err)
	}
	id2, err := j.RecordBatch("Show", []Move{{SourcePath: "/tv/b.mkv", DestPath: "/tv/y.mkv"}})
	if err != nil {
		t.Fatal(err)
	}

	if err := j.MarkUndone(id2); err != nil {
		t.Fatalf("MarkUndone failed: %v", err)
	}

	// Undone batches are skipped; the previous one becomes current.
	b, err := j.LastBatch()
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.ID != id1 {
		t.Fatalf("expected batch %d, got %+v", id1, b)
	}

	// Double undo is an error
	if err := j.MarkUndone(id2); err == nil {
		t.Fatal("expected error for double undo")
	}
}

func TestRecent(t *testing.T) {
	j := openTest(t)

	for i := 0; i < 3; i++ {
		if _, err := j.RecordBatch("Show", []Move{{SourcePath: "/tv/a.mkv", DestPath: "/tv/b.mkv"}}); err != nil {
			t.Fatal(err)
		}
	}

	batches, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].ID < batches[1].ID {
		t.Error("batches not newest first")
	}
	if len(batches[0].Moves) != 1 {
		t.Error("moves not attached")
	}
}

func TestOpenPathPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	j, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	id, err := j.RecordBatch("Show", []Move{{SourcePath: "/tv/a.mkv", DestPath: "/tv/b.mkv"}})
	if err != nil {
		t.Fatal(err)
	}
	j.Close()

	j2, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer j2.Close()

	b, err := j2.LastBatch()
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.ID != id {
		t.Fatalf("batch not persisted: %+v", b)
	}
}
