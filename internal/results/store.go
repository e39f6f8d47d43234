package results

import (
	"cmp"
	"slices"
	"sync"
)

// Entry はダイジェストに紐づくファイル
type Entry struct {
	Path string
	Size int64
}

// Failure はハッシュに失敗したファイル
type Failure struct {
	Path  string
	Error string
}

// Group は同一内容を持つファイル群
type Group struct {
	Digest string   `json:"digest"`
	Size   int64    `json:"size"`
	Paths  []string `json:"paths"`
}

// Wasted は重複により余分に使われているバイト数を返す
func (g Group) Wasted() int64 {
	if len(g.Paths) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Paths)-1)
}

// Store はダイジェストからパス一覧へのスレッドセーフなマップ
type Store struct {
	mu       sync.Mutex
	entries  map[string][]Entry
	files    int
	failures []Failure
}

// NewStore は空の Store を作成する
func NewStore() *Store {
	return &Store{
		entries: make(map[string][]Entry),
	}
}

// Add はダイジェストとパスを記録する
func (s *Store) Add(digest, path string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[digest] = append(s.entries[digest], Entry{Path: path, Size: size})
	s.files++
}

// AddFailure はハッシュに失敗したファイルを記録する
func (s *Store) AddFailure(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, Failure{Path: path, Error: err.Error()})
}

// Len は記録済みのファイル数を返す
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

// Digests は異なるダイジェストの数を返す
func (s *Store) Digests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Paths はダイジェストに紐づくパスを記録順で返す
func (s *Store) Paths(digest string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[digest]
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// Failures はハッシュに失敗したファイルの一覧を返す
func (s *Store) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.failures)
}

// Duplicates は2つ以上のパスを持つダイジェストを返す
// 無駄なバイト数の降順、同値ならダイジェスト順。パスは辞書順
func (s *Store) Duplicates() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	var groups []Group
	for digest, entries := range s.entries {
		if len(entries) < 2 {
			continue
		}
		g := Group{
			Digest: digest,
			Size:   entries[0].Size,
			Paths:  make([]string, len(entries)),
		}
		for i, e := range entries {
			g.Paths[i] = e.Path
		}
		slices.Sort(g.Paths)
		groups = append(groups, g)
	}

	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.Wasted(), a.Wasted()); c != 0 {
			return c
		}
		return cmp.Compare(a.Digest, b.Digest)
	})
	return groups
}

// TotalWasted はグループ全体の無駄なバイト数を返す
func TotalWasted(groups []Group) int64 {
	var total int64
	for _, g := range groups {
		total += g.Wasted()
	}
	return total
}
