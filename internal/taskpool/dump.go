package taskpool

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/luzijia/zeppelin/internal/sendtask"
)

// Entry is one line of the diagnostic snapshot, mirroring
// ZPBinlogSendTaskPool::Dump() in zp_binlog_sender.cc: name, sequence, and
// either the live filenum or the last snapshot plus an "occupied" flag
// when the task is currently fetched out by a worker.
type Entry struct {
	Name     string `msgpack:"name"`
	Sequence uint64 `msgpack:"sequence"`
	Filenum  uint32 `msgpack:"filenum"`
	Occupied bool   `msgpack:"occupied"`
}

// Dump returns a point-in-time snapshot of every tracked task.
func (p *TaskPool) Dump() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Entry, 0, len(p.index))
	for name, entry := range p.index {
		e := Entry{Name: name, Sequence: entry.sequence}
		if entry.elem == nil {
			e.Filenum = entry.filenumSnap
			e.Occupied = true
		} else {
			e.Filenum = entry.elem.Value.(*sendtask.SendTask).Filenum()
		}
		out = append(out, e)
	}
	return out
}

// DumpMsgpack encodes Dump()'s snapshot for the dump-tasks CLI subcommand.
func (p *TaskPool) DumpMsgpack() ([]byte, error) {
	return msgpack.Marshal(p.Dump())
}
