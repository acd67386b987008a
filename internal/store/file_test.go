package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFilePersistenceMissingFileReadsEmpty(t *testing.T) {
	p := NewFilePersistence(filepath.Join(t.TempDir(), "nope"))
	evals, err := p.LoadEvaluations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(evals) != 0 {
		t.Fatalf("evaluations = %d, want 0", len(evals))
	}
}

func TestFilePersistenceCorruptFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, evaluationsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	p := NewFilePersistence(dir)
	evals, err := p.LoadEvaluations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(evals) != 0 {
		t.Fatalf("evaluations = %d, want 0", len(evals))
	}
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersistence(dir)
	in := []Evaluation{{
		RoomID:               "fashion",
		SkuID:                "f-001",
		EvaluatorID:          "京东科技-曹政",
		VideoQualified:       Qualified,
		BoardAppearanceCount: 3,
		Issues:               []string{"mismatch"},
		Timestamp:            1700000000000,
	}}
	if err := p.SaveEvaluations(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := p.LoadEvaluations()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].EvaluatorID != "京东科技-曹政" || out[0].Timestamp != 1700000000000 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// The document is a pretty-printed JSON array.
	data, err := os.ReadFile(filepath.Join(dir, evaluationsFile))
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("[\n  ")) {
		t.Fatalf("document not pretty-printed: %q", data[:min(len(data), 10)])
	}
}

func TestFilePersistenceWipe(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersistence(dir)
	if err := p.SaveEvaluations([]Evaluation{{RoomID: "fashion", SkuID: "f-001", EvaluatorID: "A-X"}}); err != nil {
		t.Fatalf("save evaluations: %v", err)
	}
	if err := p.SaveSubmissions([]Submission{{RoomID: "fashion", EvaluatorID: "A-X"}}); err != nil {
		t.Fatalf("save submissions: %v", err)
	}
	if err := p.Wipe(); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, evaluationsFile)); !os.IsNotExist(err) {
		t.Fatalf("evaluations file still present after wipe")
	}
	if _, err := os.Stat(filepath.Join(dir, submissionsFile)); !os.IsNotExist(err) {
		t.Fatalf("submissions file still present after wipe")
	}
	// A second wipe with nothing to delete succeeds.
	if err := p.Wipe(); err != nil {
		t.Fatalf("second wipe: %v", err)
	}
}
