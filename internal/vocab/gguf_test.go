package vocab

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeGGUFString writes a GGUF length-prefixed string.
func writeGGUFString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint64(len(s)))
	buf.WriteString(s)
}

// buildTestGGUF assembles a minimal v3 GGUF byte stream carrying a token
// array, an optional score array, and one unrelated metadata key.
func buildTestGGUF(tokens []string, scores []float32) []byte {
	var buf bytes.Buffer
	buf.WriteString("GGUF")
	binary.Write(&buf, binary.LittleEndian, uint32(3)) // version
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // tensor count
	metaCount := uint64(2)
	if scores != nil {
		metaCount = 3
	}
	binary.Write(&buf, binary.LittleEndian, metaCount)

	// Unrelated key first, to exercise skipping.
	writeGGUFString(&buf, "general.architecture")
	binary.Write(&buf, binary.LittleEndian, uint32(ggufTypeString))
	writeGGUFString(&buf, "llama")

	writeGGUFString(&buf, ggufKeyTokens)
	binary.Write(&buf, binary.LittleEndian, uint32(ggufTypeArray))
	binary.Write(&buf, binary.LittleEndian, uint32(ggufTypeString))
	binary.Write(&buf, binary.LittleEndian, uint64(len(tokens)))
	for _, tok := range tokens {
		writeGGUFString(&buf, tok)
	}

	if scores != nil {
		writeGGUFString(&buf, ggufKeyScores)
		binary.Write(&buf, binary.LittleEndian, uint32(ggufTypeArray))
		binary.Write(&buf, binary.LittleEndian, uint32(ggufTypeFloat32))
		binary.Write(&buf, binary.LittleEndian, uint64(len(scores)))
		for _, s := range scores {
			binary.Write(&buf, binary.LittleEndian, s)
		}
	}
	return buf.Bytes()
}

func TestLoadGGUFVocabulary(t *testing.T) {
	tokens := []string{"the", "and", "\"", "."}
	scores := []float32{9.5, 8.0, 2.5, 7.0}

	path := filepath.Join(t.TempDir(), "test.gguf")
	if err := os.WriteFile(path, buildTestGGUF(tokens, scores), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	entries, err := LoadGGUF(path)
	if err != nil {
		t.Fatalf("load gguf: %v", err)
	}
	if len(entries) != len(tokens) {
		t.Fatalf("expected %d entries, got %d", len(tokens), len(entries))
	}
	for i, e := range entries {
		if e.ID != i {
			t.Fatalf("entry %d has id %d", i, e.ID)
		}
		if e.Text != tokens[i] {
			t.Fatalf("entry %d text %q, want %q", i, e.Text, tokens[i])
		}
		if e.Score != scores[i] {
			t.Fatalf("entry %d score %f, want %f", i, e.Score, scores[i])
		}
	}
}

func TestLoadGGUFMissingScores(t *testing.T) {
	tokens := []string{"a", "b", "c"}

	path := filepath.Join(t.TempDir(), "noscores.gguf")
	if err := os.WriteFile(path, buildTestGGUF(tokens, nil), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	entries, err := LoadGGUF(path)
	if err != nil {
		t.Fatalf("load gguf: %v", err)
	}
	// Fallback scores follow id order: earlier ids score higher.
	for i := 1; i < len(entries); i++ {
		if entries[i].Score >= entries[i-1].Score {
			t.Fatalf("fallback scores should decrease with id: %f >= %f", entries[i].Score, entries[i-1].Score)
		}
	}
}

func TestLoadGGUFOversizedStringLength(t *testing.T) {
	// A corrupt length prefix far beyond the string cap must fail cleanly
	// instead of attempting the allocation.
	var buf bytes.Buffer
	buf.WriteString("GGUF")
	binary.Write(&buf, binary.LittleEndian, uint32(3)) // version
	binary.Write(&buf, binary.LittleEndian, uint64(0)) // tensor count
	binary.Write(&buf, binary.LittleEndian, uint64(1)) // kv count
	binary.Write(&buf, binary.LittleEndian, uint64(1)<<40)

	path := filepath.Join(t.TempDir(), "oversized.gguf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadGGUF(path); err == nil {
		t.Fatal("expected error for oversized string length")
	}
}

func TestLoadGGUFBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gguf")
	if err := os.WriteFile(path, []byte("NOTGGUFDATA"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadGGUF(path); err == nil {
		t.Fatal("expected error for non-GGUF file")
	}
}
