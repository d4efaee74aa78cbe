package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("rsv")

	first, second := gen.Next(), gen.Next()
	if first != "rsv-1" || second != "rsv-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected 2 issued, got %d", gen.Issued())
	}
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("")
	_ = gen.Next()
	gen.Reset()

	if next := gen.NextFunc()(); next != "id-1" {
		t.Fatalf("expected id-1 after reset, got %q", next)
	}
}
