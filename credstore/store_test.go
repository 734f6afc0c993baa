package credstore

import "testing"

// testStoreContract exercises the behavior every Store backend must share:
// absent reads, roundtrips, overwrites, and idempotent clears.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := t.Context()

	sess, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get on empty store: %v", err)
	}
	if sess.Authenticated() || sess.CanRefresh() {
		t.Fatalf("empty store returned a session: %+v", sess)
	}

	want := Session{Access: "access-1", Refresh: "refresh-1"}
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	sess, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess != want {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", sess, want)
	}

	want = Session{Access: "access-2", Refresh: "refresh-2"}
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	sess, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if sess != want {
		t.Fatalf("overwrite mismatch: got %+v, want %+v", sess, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	sess, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if sess.Authenticated() || sess.CanRefresh() {
		t.Fatalf("clear left a session behind: %+v", sess)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("redundant clear must be a no-op: %v", err)
	}
}
