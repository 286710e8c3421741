package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "cue.db"), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreSetGetDelete(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{name: "no cache"},
		{name: "with cache", opts: []Option{WithCache(1 << 20)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := openTestStore(t, tc.opts...)

			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, "k", []byte("v1")); err != nil {
				t.Fatalf("set: %v", err)
			}
			// read twice so the second read can come from the cache
			for i := 0; i < 2; i++ {
				v, ok, err := s.Get(ctx, "k")
				if err != nil || !ok || string(v) != "v1" {
					t.Fatalf("read %d: got %q ok=%v err=%v", i, v, ok, err)
				}
			}

			if err := s.Set(ctx, "k", []byte("v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			v, ok, err := s.Get(ctx, "k")
			if err != nil || !ok || string(v) != "v2" {
				t.Fatalf("expected overwrite to be visible, got %q ok=%v err=%v", v, ok, err)
			}

			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := s.Get(ctx, "k"); ok {
				t.Fatalf("expected key to be gone after delete")
			}
		})
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cue.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Set(ctx, KeyLibrary, []byte(`[{"name":"a"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()

	got, ok, err := s2.Get(ctx, KeyLibrary)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"name":"a"}]` {
		t.Fatalf("value = %s", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var list []string
	ok, err := GetJSON(ctx, s, "absent", &list)
	if err != nil || ok {
		t.Fatalf("expected absent key to report false, got ok=%v err=%v", ok, err)
	}

	if err := SetJSON(ctx, s, "list", []string{"a", "b"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	ok, err = GetJSON(ctx, s, "list", &list)
	if err != nil || !ok {
		t.Fatalf("GetJSON: ok=%v err=%v", ok, err)
	}
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Fatalf("unexpected list: %#v", list)
	}

	if err := s.Set(ctx, "broken", []byte("{not json")); err != nil {
		t.Fatalf("set broken: %v", err)
	}
	if _, err := GetJSON(ctx, s, "broken", &list); err == nil {
		t.Fatalf("expected decode error for broken value")
	}
}
