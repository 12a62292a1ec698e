// Package taskpool implements the shared FIFO of runnable SendTasks with a
// name-indexed handle, grounded on
// original_source/src/node/zp_binlog_sender.cc's ZPBinlogSendTaskPool. The
// C++ original keeps a name -> std::list<iterator> index; this
// reimplementation uses the generation-counted handle
// spec.md §9 calls out as the natural substitute: a container/list element
// pointer that is nil exactly while the task is fetched out, playing the
// role of the C++ tasks_.end() sentinel.
package taskpool

import (
	"container/list"
	"math"
	"sync"

	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/partition"
	"github.com/luzijia/zeppelin/internal/sendtask"
)

// FilenumNotFound is returned by TaskFilenum when the name is absent,
// spec.md §4.3's "INT32_MAX when the task does not exist".
const FilenumNotFound = int64(math.MaxInt32)

type indexEntry struct {
	elem        *list.Element // nil exactly while fetched out
	sequence    uint64
	filenumSnap uint32
}

// TaskPool is the single rendezvous point between a node's controller and
// its SenderWorkers: every op takes the same readers-writer lock over
// (queue, index), matching spec.md §4.3/§5.
type TaskPool struct {
	mu           sync.RWMutex
	queue        *list.List // Value: *sendtask.SendTask
	index        map[string]*indexEntry
	nextSequence uint64
}

// New returns an empty pool.
func New() *TaskPool {
	return &TaskPool{
		queue: list.New(),
		index: map[string]*indexEntry{},
	}
}

// NextSequence allocates the next task sequence number.
func (p *TaskPool) NextSequence() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	seq := p.nextSequence
	p.nextSequence++
	return seq
}

// TaskExist reports whether name is currently tracked (running or
// fetched-out).
func (p *TaskPool) TaskExist(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.index[name]
	return ok
}

// AddTask rejects with already_exists if task.Name() is already tracked;
// otherwise appends it to the queue.
func (p *TaskPool) AddTask(task *sendtask.SendTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.index[task.Name()]; exists {
		return errs.New(errs.AlreadyExists, "task %s already exists", task.Name())
	}
	elem := p.queue.PushBack(task)
	p.index[task.Name()] = &indexEntry{
		elem:        elem,
		sequence:    task.Sequence(),
		filenumSnap: task.Filenum(),
	}
	return nil
}

// AddNewTask creates a task at (filenum, startOffset) and adds it under the
// pool's own sequence allocator. When force is set and a task with the
// same name already exists, the existing one is removed first.
func (p *TaskPool) AddNewTask(
	table string,
	partitionID uint32,
	binlogPrefix string,
	target offset.Node,
	dir string,
	filenum uint32,
	startOffset uint64,
	force bool,
	h host.Host,
	parts partition.Registry,
) (*sendtask.SendTask, error) {
	task, err := sendtask.Create(p.NextSequence(), table, partitionID, binlogPrefix, target, dir, filenum, startOffset, h, parts)
	if err != nil {
		return nil, err
	}
	if force && p.TaskExist(task.Name()) {
		_ = p.RemoveTask(task.Name())
	}
	if err := p.AddTask(task); err != nil {
		task.Close()
		return nil, err
	}
	return task, nil
}

// RemoveTask destroys and erases name. A task currently fetched out is not
// destroyed here; its index entry is erased so a later PutBack recognizes
// it as stale and destroys it there instead.
func (p *TaskPool) RemoveTask(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.index[name]
	if !ok {
		return errs.New(errs.NotFound, "task %s not found", name)
	}
	if entry.elem != nil {
		task := entry.elem.Value.(*sendtask.SendTask)
		p.queue.Remove(entry.elem)
		task.Close()
	}
	delete(p.index, name)
	return nil
}

// FetchOut pops the front of the queue and marks the task as checked out.
// The caller owns the returned task exclusively until PutBack.
func (p *TaskPool) FetchOut() (*sendtask.SendTask, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	front := p.queue.Front()
	if front == nil {
		return nil, errs.New(errs.NotFound, "no more task")
	}
	task := front.Value.(*sendtask.SendTask)
	p.queue.Remove(front)
	p.index[task.Name()].elem = nil
	return task, nil
}

// PutBack returns a fetched-out task to the tail of the queue, unless the
// task has been superseded: its name is gone, a newer task with the same
// name is already queued, or the stored sequence disagrees. In those
// cases task is destroyed and not_found is returned.
func (p *TaskPool) PutBack(task *sendtask.SendTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.index[task.Name()]
	if !ok || entry.elem != nil || entry.sequence != task.Sequence() {
		task.Close()
		return errs.New(errs.NotFound, "task %s may have been removed", task.Name())
	}
	entry.elem = p.queue.PushBack(task)
	entry.filenumSnap = task.Filenum()
	return nil
}

// TaskFilenum is a diagnostic query: the current filenum of a live task,
// its last snapshot if fetched out, or FilenumNotFound if absent.
func (p *TaskPool) TaskFilenum(name string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.index[name]
	if !ok {
		return FilenumNotFound
	}
	if entry.elem == nil {
		return int64(entry.filenumSnap)
	}
	return int64(entry.elem.Value.(*sendtask.SendTask).Filenum())
}

// Size is the number of tasks tracked, including fetched-out ones.
func (p *TaskPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.index)
}
