package metrics

import "time"

// Recorder はハッシュ結果の記録先
type Recorder interface {
	RecordHash(size int64, elapsed time.Duration)
	RecordFailure()
}

// Observer は worker.Observer と同じメソッド集合
// metrics から worker を import しないためここで定義する
type Observer interface {
	JobSubmitted()
	JobStarted()
	JobFinished(elapsed time.Duration, panicked bool)
}

// Sink は Observer と Recorder の両方を満たす
type Sink interface {
	Observer
	Recorder
}

// Multi は複数の Sink に同じ記録を配る
type Multi []Sink

// JobSubmitted implements Observer.
func (m Multi) JobSubmitted() {
	for _, s := range m {
		s.JobSubmitted()
	}
}

// JobStarted implements Observer.
func (m Multi) JobStarted() {
	for _, s := range m {
		s.JobStarted()
	}
}

// JobFinished implements Observer.
func (m Multi) JobFinished(elapsed time.Duration, panicked bool) {
	for _, s := range m {
		s.JobFinished(elapsed, panicked)
	}
}

// RecordHash implements Recorder.
func (m Multi) RecordHash(size int64, elapsed time.Duration) {
	for _, s := range m {
		s.RecordHash(size, elapsed)
	}
}

// RecordFailure implements Recorder.
func (m Multi) RecordFailure() {
	for _, s := range m {
		s.RecordFailure()
	}
}
