package filter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robertkrimen/otto"
)

// ErrEmptyResult は式が値を返さなかったときのエラー
var ErrEmptyResult = errors.New("filter: expression produced no value")

// File はフィルタに渡すファイル情報
type File struct {
	Path string
	Size int64
}

// Filter はファイルを選別する JavaScript 式
// VM を mutex で保護するため複数ゴルーチンから呼べる
type Filter struct {
	expr   string
	vm     *otto.Otto
	script *otto.Script
	mu     sync.Mutex
}

// New は式をコンパイルして Filter を作成する
// 空文字列なら全ファイルに一致する Filter を返す
func New(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	f := &Filter{expr: expr}
	if expr == "" {
		return f, nil
	}

	vm := otto.New()
	script, err := vm.Compile("filter", expr)
	if err != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", expr, err)
	}
	f.vm = vm
	f.script = script
	return f, nil
}

// Expr は元の式を返す
func (f *Filter) Expr() string {
	return f.expr
}

// Match はファイルが条件を満たすかを返す
func (f *Filter) Match(file File) (bool, error) {
	if f == nil || f.script == nil {
		return true, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	vars := map[string]any{
		"path": file.Path,
		"name": filepath.Base(file.Path),
		"ext":  strings.ToLower(filepath.Ext(file.Path)),
		"dir":  filepath.Dir(file.Path),
		"size": file.Size,
	}
	for k, v := range vars {
		if err := f.vm.Set(k, v); err != nil {
			return false, fmt.Errorf("filter: bind %s: %w", k, err)
		}
	}

	val, err := f.vm.Run(f.script)
	if err != nil {
		return false, fmt.Errorf("filter: eval %s: %w", file.Path, err)
	}
	if val.IsUndefined() {
		return false, ErrEmptyResult
	}
	ok, err := val.ToBoolean()
	if err != nil {
		return false, fmt.Errorf("filter: convert result: %w", err)
	}
	return ok, nil
}
