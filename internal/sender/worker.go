// Package sender implements the long-lived SenderWorker loop: fetch a task
// from the pool, advance it one slice, push CMD/SKIP/LEASE messages to its
// peer, put it back. Grounded on
// original_source/src/node/zp_binlog_sender.cc's ZPBinlogSendThread.
package sender

import (
	"context"
	"time"

	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/log"
	"github.com/luzijia/zeppelin/internal/sendtask"
	"github.com/luzijia/zeppelin/internal/taskpool"
)

// sendInterval/timeSlice are spec.md §4.4's kSendInterval/kTimeSlice: the
// rate-gate/backoff unit and the maximum wall time a worker spends on one
// fetched-out task before it must put it back.
const (
	sendInterval = 1 * time.Second
	timeSlice    = 1 * time.Second
)

// Worker is one long-lived sender thread, a peer connection cache plus a
// reference to the shared pool and host.
type Worker struct {
	pool        *taskpool.TaskPool
	host        host.Host
	workerCount int
	peers       *peers
}

// NewWorker builds a worker over the shared pool. workerCount is the total
// number of sibling workers sharing pool, used only for the lease formula.
func NewWorker(pool *taskpool.TaskPool, h host.Host, workerCount int) *Worker {
	return &Worker{pool: pool, host: h, workerCount: workerCount, peers: newPeers()}
}

// Run blocks processing tasks until ctx is canceled, then closes every
// cached peer connection before returning — the Go analogue of
// ZPBinlogSendThread's should_stop flag plus its destructor's peer cleanup.
func (w *Worker) Run(ctx context.Context) {
	defer w.peers.Close()

	for !stopped(ctx) && !w.host.Available() {
		if sleepOrStop(ctx, sendInterval) {
			return
		}
	}

	for !stopped(ctx) {
		task, err := w.pool.FetchOut()
		if err != nil {
			if sleepOrStop(ctx, sendInterval) {
				return
			}
			continue
		}

		if time.Since(task.ProcessErrorTime()) < sendInterval {
			// Fetched a task that failed not long ago: the pool likely has
			// little else runnable right now, so slow the loop down.
			if sleepOrStop(ctx, sendInterval) {
				w.putBackOrClose(task)
				return
			}
		}

		w.runSlice(ctx, task)

		if stopped(ctx) {
			return
		}
	}
}

// runSlice processes one fetched-out task until it is put back: because
// ProcessTask reported end_file or another error, because the slice's time
// budget (kTimeSlice) ran out, or because ctx was canceled. A failed
// SendToPeer does not end the slice; it clears SendNext so the same Pre
// snapshot is resent on the next iteration.
func (w *Worker) runSlice(ctx context.Context, task *sendtask.SendTask) {
	sliceStart := time.Now()

	for !stopped(ctx) {
		if task.SendNext {
			err := task.ProcessTask()
			if errs.Is(err, errs.EndFile) {
				w.renewPeerLease(ctx, task)
				w.putBackOrClose(task)
				return
			}
			if err != nil {
				task.StampProcessErrorTime(time.Now())
				w.putBackOrClose(task)
				return
			}
		}

		msg := task.BuildCommonSyncRequest()
		if !msg.Initialized() {
			log.Warn("ignoring malformed SyncRequest for task %s: %+v", task.Name(), msg)
			task.SendNext = false
			if sleepOrStop(ctx, sendInterval) {
				w.putBackOrClose(task)
				return
			}
		} else if err := w.peers.SendToPeer(ctx, task.Target(), msg); err != nil {
			log.Error("failed to send to peer for task %s: %v", task.Name(), err)
			task.SendNext = false
			if sleepOrStop(ctx, sendInterval) {
				w.putBackOrClose(task)
				return
			}
		} else {
			task.SendNext = true
		}

		if time.Since(sliceStart) > timeSlice {
			w.renewPeerLease(ctx, task)
			w.putBackOrClose(task)
			return
		}
	}
	w.putBackOrClose(task)
}

func (w *Worker) renewPeerLease(ctx context.Context, task *sendtask.SendTask) {
	lease := leaseSeconds(w.pool.Size(), w.workerCount, int64(timeSlice/time.Second))
	msg := task.BuildLeaseSyncRequest(lease)
	if err := w.peers.SendToPeer(ctx, task.Target(), msg); err != nil {
		log.Warn("failed to renew lease with peer for task %s: %v", task.Name(), err)
	}
}

func (w *Worker) putBackOrClose(task *sendtask.SendTask) {
	if err := w.pool.PutBack(task); err != nil {
		log.Warn("put_back of task %s failed, task was superseded: %v", task.Name(), err)
	}
}

func stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// sleepOrStop sleeps for d unless ctx is canceled first, reporting which.
func sleepOrStop(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
