package cache

import "testing"

func TestGetBeforeInit(t *testing.T) {
	Close()
	if _, ok := Get[string]("missing"); ok {
		t.Fatal("expected miss before Init")
	}
	if err := Set("k", "v"); err != nil {
		t.Fatalf("Set before Init should be a no-op, got %v", err)
	}
}

func TestSetGet(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Close)

	if err := Set("answer", 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := Get[int]("answer")
	if !ok || v != 42 {
		t.Fatalf("Get = %v, %v; want 42, true", v, ok)
	}
	if _, ok := Get[string]("answer"); ok {
		t.Fatal("expected miss for mismatched type")
	}
	if _, ok := Get[int]("question"); ok {
		t.Fatal("expected miss for unknown key")
	}
}
