package worker

import (
	"sync"
)

// Queue はワーカー間で共有されるジョブキュー
// 送信側はブロックせず、受信側は Pop でジョブか終了シグナルを待つ
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Job
	head   int
	closed bool
}

// NewQueue は空のキューを作成する
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push はジョブを末尾に追加する
// クローズ後は ErrPoolClosed を返し、ジョブは追加されない
func (q *Queue) Push(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrPoolClosed
	}

	q.items = append(q.items, job)
	q.cond.Signal()
	return nil
}

// Pop はジョブが届くまでブロックする
// クローズ済みかつ空になった場合は (nil, false) を返す
func (q *Queue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}

	if q.head == len(q.items) {
		return nil, false
	}

	job := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	// 消費済み領域を回収
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return job, true
}

// Close はキューをクローズする（冪等）
// 待機中の全ワーカーを起こし、残りのジョブは引き続き取り出せる
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Closed はクローズ済みかどうかを返す
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len は未処理のジョブ数を返す
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
