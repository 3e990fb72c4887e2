package uuid

import "testing"

func TestNewIsValidAndOrdered(t *testing.T) {
	prev := New()
	if !IsValid(prev) {
		t.Fatalf("expected valid uuid, got %q", prev)
	}
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("expected %q to sort after %q", next, prev)
		}
		prev = next
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
	got, err := Parse("0190A6C2-7B1E-7000-8000-000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0190a6c2-7b1e-7000-8000-000000000001" {
		t.Errorf("expected canonical lower-case form, got %q", got)
	}
}
