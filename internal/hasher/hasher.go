package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize は1回の読み込みサイズ（8 KiB）
const DefaultChunkSize = 8 * 1024

// Hasher はファイル内容のダイジェストを計算する
type Hasher struct {
	ChunkSize int // 0以下なら DefaultChunkSize
}

// New はデフォルト設定の Hasher を返す
func New() *Hasher {
	return &Hasher{ChunkSize: DefaultChunkSize}
}

// HashFile はデフォルト設定でファイルのダイジェストを返す
func HashFile(path string) (string, error) {
	digest, _, err := New().HashFile(path)
	return digest, err
}

// HashFile はファイルを読み込み、ダイジェストと読み込んだバイト数を返す
func (h *Hasher) HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()

	digest, n, err := h.HashReader(f)
	if err != nil {
		return "", n, fmt.Errorf("hash %s: %w", path, err)
	}
	return digest, n, nil
}

// HashReader は r を EOF までチャンク単位で読み込みダイジェストを返す
func (h *Hasher) HashReader(r io.Reader) (string, int64, error) {
	size := h.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	sum := sha256.New()
	buf := make([]byte, size)
	var total int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = sum.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", total, err
		}
	}

	return hex.EncodeToString(sum.Sum(nil)), total, nil
}
