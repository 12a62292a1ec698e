package taskpool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luzijia/zeppelin/internal/binlog"
	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/mock"
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/sendtask"
)

func writeOneRecordBinlog(t *testing.T, dir string, filenum uint32) {
	t.Helper()
	path := filepath.Join(dir, binlog.FileName(binlog.DefaultPrefix, filenum))
	if err := os.WriteFile(path, []byte{1, 3, 0, 0, 'a', 'b', 'c'}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func newTestDeps() (*mock.Host, *mock.Registry) {
	h := &mock.Host{IsAvail: true}
	reg := mock.NewRegistry()
	reg.Put("t1", 0, &mock.Partition{IsOpened: true, End: offset.BinlogOffset{Filenum: 0, Offset: 7}})
	return h, reg
}

func TestTaskPool_AddFetchPutBack(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	task, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg)
	if err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}

	// --- when ---
	if p.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", p.Size())
	}

	fetched, err := p.FetchOut()
	if err != nil {
		t.Fatalf("FetchOut: %v", err)
	}
	if fetched.Name() != task.Name() {
		t.Fatalf("FetchOut returned %s, want %s", fetched.Name(), task.Name())
	}

	// --- then: fetched-out task is not found by a second fetch ---
	if _, err := p.FetchOut(); !errs.Is(err, errs.NotFound) {
		t.Errorf("second FetchOut() error = %v, want not_found", err)
	}

	if err := p.PutBack(fetched); err != nil {
		t.Fatalf("PutBack: %v", err)
	}
	if _, err := p.FetchOut(); err != nil {
		t.Errorf("FetchOut after PutBack error = %v", err)
	}
}

func TestTaskPool_AddTaskRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	if _, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg); err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}

	// --- when ---
	_, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg)

	// --- then ---
	if !errs.Is(err, errs.AlreadyExists) {
		t.Errorf("AddNewTask() error = %v, want already_exists", err)
	}
}

func TestTaskPool_ForceAddReplacesExisting(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	first, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg)
	if err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}

	// --- when ---
	second, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, true, h, reg)
	if err != nil {
		t.Fatalf("force AddNewTask: %v", err)
	}

	// --- then ---
	if first.Sequence() == second.Sequence() {
		t.Errorf("force-replaced task kept the old sequence %d", second.Sequence())
	}
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after force replace", p.Size())
	}
}

func TestTaskPool_PutBackAfterRemoveIsStale(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	task, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg)
	if err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}
	fetched, err := p.FetchOut()
	if err != nil {
		t.Fatalf("FetchOut: %v", err)
	}

	// --- when ---
	if err := p.RemoveTask(task.Name()); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}

	// --- then ---
	if err := p.PutBack(fetched); !errs.Is(err, errs.NotFound) {
		t.Errorf("PutBack() after remove error = %v, want not_found", err)
	}
	if p.Size() != 0 {
		t.Errorf("Size() = %d, want 0", p.Size())
	}
}

func TestTaskPool_TaskFilenumReflectsFetchedOutSnapshot(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	task, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg)
	if err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}

	// --- when: not yet fetched out ---
	if got := p.TaskFilenum(task.Name()); got != 0 {
		t.Errorf("TaskFilenum() = %d, want 0", got)
	}

	// --- then: absent name returns the sentinel ---
	if got := p.TaskFilenum("does-not-exist"); got != FilenumNotFound {
		t.Errorf("TaskFilenum(absent) = %d, want %d", got, FilenumNotFound)
	}

	fetched, err := p.FetchOut()
	if err != nil {
		t.Fatalf("FetchOut: %v", err)
	}
	if got := p.TaskFilenum(task.Name()); got != 0 {
		t.Errorf("TaskFilenum() while fetched out = %d, want snapshot 0", got)
	}
	_ = p.PutBack(fetched)
}

func TestTaskPool_Dump(t *testing.T) {
	t.Parallel()

	// --- given ---
	dir := t.TempDir()
	writeOneRecordBinlog(t, dir, 0)
	h, reg := newTestDeps()
	p := New()

	if _, err := p.AddNewTask("t1", 0, binlog.DefaultPrefix, offset.Node{IP: "1.1.1.1", Port: 1}, dir, 0, 0, false, h, reg); err != nil {
		t.Fatalf("AddNewTask: %v", err)
	}

	// --- when ---
	entries := p.Dump()
	encoded, err := p.DumpMsgpack()

	// --- then ---
	if len(entries) != 1 {
		t.Fatalf("Dump() returned %d entries, want 1", len(entries))
	}
	want := Entry{Name: sendtask.Name("t1", 0, offset.Node{IP: "1.1.1.1", Port: 1}), Sequence: 0, Filenum: 0, Occupied: false}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Errorf("Dump()[0] diff:\n%s", diff)
	}
	if err != nil {
		t.Fatalf("DumpMsgpack: %v", err)
	}
	if len(encoded) == 0 {
		t.Errorf("DumpMsgpack() returned empty payload")
	}
}
