package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestStoreAdd(t *testing.T) {
	s := NewStore()
	s.Add("aaa", "/a/1", 10)
	s.Add("aaa", "/a/2", 10)
	s.Add("bbb", "/b/1", 5)

	if s.Len() != 3 {
		t.Errorf("expected 3 files, got %d", s.Len())
	}
	if s.Digests() != 2 {
		t.Errorf("expected 2 digests, got %d", s.Digests())
	}
	paths := s.Paths("aaa")
	if len(paths) != 2 || paths[0] != "/a/1" || paths[1] != "/a/2" {
		t.Errorf("unexpected paths in insertion order: %v", paths)
	}
}

func TestStoreDuplicates(t *testing.T) {
	s := NewStore()
	s.Add("small", "/s/2", 1)
	s.Add("small", "/s/1", 1)
	s.Add("big", "/b/1", 100)
	s.Add("big", "/b/2", 100)
	s.Add("big", "/b/3", 100)
	s.Add("unique", "/u/1", 1000)

	groups := s.Duplicates()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// 無駄なバイト数の多い順
	if groups[0].Digest != "big" || groups[1].Digest != "small" {
		t.Errorf("unexpected group order: %s, %s", groups[0].Digest, groups[1].Digest)
	}
	if groups[0].Wasted() != 200 {
		t.Errorf("expected 200 wasted bytes, got %d", groups[0].Wasted())
	}
	if groups[1].Paths[0] != "/s/1" {
		t.Errorf("expected sorted paths, got %v", groups[1].Paths)
	}
	for _, g := range groups {
		if g.Digest == "unique" {
			t.Error("unique digest must not appear in duplicates")
		}
	}
	if TotalWasted(groups) != 201 {
		t.Errorf("expected 201 total wasted, got %d", TotalWasted(groups))
	}
}

func TestStoreConcurrentAdd(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				s.Add(fmt.Sprintf("d%d", j%10), fmt.Sprintf("/%d/%d", i, j), 1)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 1000 {
		t.Errorf("expected 1000 files, got %d", s.Len())
	}
	if s.Digests() != 10 {
		t.Errorf("expected 10 digests, got %d", s.Digests())
	}
}

func TestStoreFailures(t *testing.T) {
	s := NewStore()
	s.AddFailure("/x", errors.New("permission denied"))

	failures := s.Failures()
	if len(failures) != 1 || failures[0].Path != "/x" {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if s.Len() != 0 {
		t.Error("failures must not count as hashed files")
	}
}

func TestWriteText(t *testing.T) {
	groups := []Group{{
		Digest: "0123456789abcdef0123456789abcdef",
		Size:   3,
		Paths:  []string{"/a", "/b"},
	}}

	buf := &bytes.Buffer{}
	if err := WriteText(buf, groups); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Duplicate (hash: 0123456789abcdef...):") {
		t.Errorf("expected digest prefix header, got: %s", output)
	}
	if !strings.Contains(output, "  /a\n  /b\n") {
		t.Errorf("expected indented paths, got: %s", output)
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteJSON(buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}

	buf.Reset()
	groups := []Group{{Digest: "abc", Size: 1, Paths: []string{"/a", "/b"}}}
	if err := WriteJSON(buf, groups); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []Group
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Digest != "abc" || len(decoded[0].Paths) != 2 {
		t.Errorf("unexpected decoded groups: %+v", decoded)
	}
}
