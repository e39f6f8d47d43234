package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"dupfind/internal/events"
	"dupfind/internal/filter"
	"dupfind/internal/hasher"
	"dupfind/internal/logger"
	"dupfind/internal/metrics"
	"dupfind/internal/results"
	"dupfind/internal/worker"
)

// Executor はジョブの投入先（worker.Pool が満たす）
type Executor interface {
	Execute(job worker.Job) error
}

// WalkStats はディレクトリ走査の統計
type WalkStats struct {
	Visited   int `json:"visited"`   // 見つかった通常ファイル数
	Submitted int `json:"submitted"` // 投入したジョブ数
	Skipped   int `json:"skipped"`   // サイズやフィルタで除外した数
	Errors    int `json:"errors"`    // 読めなかったエントリ数
}

// Walker はディレクトリを走査し、ファイルごとにハッシュジョブを投入する
type Walker struct {
	Root       string
	MinSize    int64
	SkipHidden bool
	ScanID     string

	Filter   *filter.Filter
	Hasher   *hasher.Hasher
	Store    *results.Store
	Recorder metrics.Recorder
	Bus      *events.Bus
}

// Walk は Root 以下を走査し、各ファイルのジョブを exec に投入する
// ctx がキャンセルされると走査を止める（投入済みのジョブはプール側で完了する）
func (w *Walker) Walk(ctx context.Context, exec Executor) (WalkStats, error) {
	var stats WalkStats

	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == w.Root {
				return err
			}
			stats.Errors++
			logger.Warn("scan", "skipping %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if w.SkipHidden && path != w.Root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// シンボリックリンクやデバイスは辿らない
		if !d.Type().IsRegular() {
			return nil
		}
		if w.SkipHidden && isHidden(d.Name()) {
			stats.Skipped++
			return nil
		}

		stats.Visited++

		info, err := d.Info()
		if err != nil {
			stats.Errors++
			logger.Warn("scan", "stat %s: %v", path, err)
			return nil
		}
		if info.Size() < w.MinSize {
			stats.Skipped++
			return nil
		}

		ok, err := w.Filter.Match(filter.File{Path: path, Size: info.Size()})
		if err != nil {
			stats.Errors++
			logger.Warn("scan", "%v", err)
			return nil
		}
		if !ok {
			stats.Skipped++
			return nil
		}

		if err := exec.Execute(w.newJob(path)); err != nil {
			return fmt.Errorf("submit %s: %w", path, err)
		}
		stats.Submitted++
		return nil
	})

	return stats, err
}

func (w *Walker) newJob(path string) *hashJob {
	h := w.Hasher
	if h == nil {
		h = hasher.New()
	}
	return &hashJob{
		path:     path,
		scanID:   w.ScanID,
		hasher:   h,
		store:    w.Store,
		recorder: w.Recorder,
		bus:      w.Bus,
	}
}

// hashJob は1ファイルをハッシュして結果を Store に記録する
type hashJob struct {
	path     string
	scanID   string
	hasher   *hasher.Hasher
	store    *results.Store
	recorder metrics.Recorder
	bus      *events.Bus
}

// Run implements worker.Job.
// 読み込みエラーは記録してログに出すだけで伝播しない
func (j *hashJob) Run() {
	start := time.Now()

	digest, size, err := j.hasher.HashFile(j.path)
	if err != nil {
		logger.Warn("scan", "%v", err)
		j.store.AddFailure(j.path, err)
		if j.recorder != nil {
			j.recorder.RecordFailure()
		}
		j.bus.Publish(events.NewFileFailedEvent(j.scanID, j.path, err))
		return
	}

	j.store.Add(digest, j.path, size)
	if j.recorder != nil {
		j.recorder.RecordHash(size, time.Since(start))
	}
	j.bus.Publish(events.NewFileHashedEvent(j.scanID, j.path, digest, size))
	logger.Debug("scan", "hashed %s: %s", j.path, digest)
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
