package dist

import "testing"

func stubEnv(t *testing.T, values map[string]string) {
	t.Helper()
	original := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = original })
}

func TestResolveDefaultsToSingleProcess(t *testing.T) {
	stubEnv(t, nil)
	ctx := Resolve()
	if ctx.Rank != 0 || ctx.WorldSize != 1 {
		t.Fatalf("unexpected context %+v", ctx)
	}
	if !ctx.IsOwner() {
		t.Fatal("single process must own output emission")
	}
	if ctx.Distributed() {
		t.Fatal("single process must not report distributed")
	}
	if ctx.Device != "cuda" {
		t.Fatalf("expected default device, got %q", ctx.Device)
	}
}

func TestResolveDistributedGroup(t *testing.T) {
	stubEnv(t, map[string]string{"WORLD_SIZE": "4", "RANK": "2", "LOCAL_RANK": "2"})
	ctx := Resolve()
	if ctx.WorldSize != 4 || ctx.Rank != 2 {
		t.Fatalf("unexpected context %+v", ctx)
	}
	if ctx.IsOwner() {
		t.Fatal("rank 2 must not own output emission")
	}
	if ctx.Device != "cuda:2" {
		t.Fatalf("expected rank-bound device, got %q", ctx.Device)
	}
}

func TestResolveOwnerRank(t *testing.T) {
	stubEnv(t, map[string]string{"WORLD_SIZE": "2", "RANK": "0"})
	ctx := Resolve()
	if !ctx.IsOwner() {
		t.Fatal("rank 0 must own output emission")
	}
	if !ctx.Distributed() {
		t.Fatal("group of two must report distributed")
	}
}

func TestResolveIgnoresMalformedValues(t *testing.T) {
	stubEnv(t, map[string]string{"WORLD_SIZE": "banana", "RANK": "-3"})
	ctx := Resolve()
	if ctx.WorldSize != 1 || ctx.Rank != 0 {
		t.Fatalf("malformed env must fall back to defaults, got %+v", ctx)
	}
}
