package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDocumentRepoLifecycle(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	initial := Content{
		Title:   "Mutual NDA",
		DocType: "nda",
		Body:    "This Agreement is made between the parties.",
		Tags:    []string{"confidential"},
	}

	if err := svc.EnsureDocumentRepo("doc-1", initial, "Avery"); err != nil {
		t.Fatalf("EnsureDocumentRepo() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "doc-1")); err != nil {
		t.Fatalf("repo directory missing: %v", err)
	}

	// Re-running must be a no-op, not an error.
	if err := svc.EnsureDocumentRepo("doc-1", initial, "Avery"); err != nil {
		t.Fatalf("EnsureDocumentRepo() second call error = %v", err)
	}

	updated := initial
	updated.Body = "This Agreement is made between the undersigned parties."
	revision, err := svc.CommitContent("doc-1", updated, "Avery", "Tighten preamble")
	if err != nil {
		t.Fatalf("CommitContent() error = %v", err)
	}
	if revision.Hash == "" {
		t.Fatal("expected revision hash")
	}

	history, err := svc.History("doc-1", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Hash != revision.Hash {
		t.Fatalf("expected newest revision first, got %+v", history[0])
	}

	changed, err := svc.GetContentByHash("doc-1", revision.Hash)
	if err != nil {
		t.Fatalf("GetContentByHash() error = %v", err)
	}
	if changed.Body != updated.Body {
		t.Fatalf("unexpected content: %+v", changed)
	}
	if changed.DocType != "nda" {
		t.Fatalf("doc type lost in round-trip: %+v", changed)
	}
}

func TestConcurrentCommitContent(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	initial := Content{
		Title:   "Lease Agreement",
		DocType: "lease",
		Body:    "Initial terms.",
	}

	if err := svc.EnsureDocumentRepo("doc-1", initial, "Avery"); err != nil {
		t.Fatalf("EnsureDocumentRepo() error = %v", err)
	}

	const writers = 12
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			next := initial
			next.Body = fmt.Sprintf("terms revision %02d", idx)
			if _, err := svc.CommitContent("doc-1", next, "Avery", fmt.Sprintf("Revision %02d", idx)); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("CommitContent() concurrent error = %v", err)
		}
	}

	history, err := svc.History("doc-1", 100)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) < writers+1 {
		t.Fatalf("expected at least %d commits in history, got %d", writers+1, len(history))
	}
}
