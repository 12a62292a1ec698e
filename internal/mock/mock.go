// Package mock collects small hand-written fakes for the external
// collaborator interfaces this core consumes (internal/host, internal/partition),
// in the same shape as replication/mock in the teacher tree: plain structs
// with canned fields implementing the target interface directly, no
// mocking framework.
package mock

import (
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/partition"
)

// Host implements host.Host with canned values.
type Host struct {
	Epoch      uint64
	IP         string
	Port       uint16
	IsAvail    bool
	SenderCnt  uint32
}

func (h *Host) MetaEpoch() uint64          { return h.Epoch }
func (h *Host) LocalIP() string            { return h.IP }
func (h *Host) LocalPort() uint16          { return h.Port }
func (h *Host) Available() bool            { return h.IsAvail }
func (h *Host) BinlogSenderCount() uint32  { return h.SenderCnt }

// Partition implements partition.Partition with a canned end offset.
type Partition struct {
	IsOpened bool
	End      offset.BinlogOffset
}

func (p *Partition) Opened() bool                      { return p.IsOpened }
func (p *Partition) BinlogOffset() offset.BinlogOffset { return p.End }

// Registry implements partition.Registry over a fixed map keyed by
// "<table>/<id>".
type Registry struct {
	Partitions map[string]*Partition
}

func NewRegistry() *Registry {
	return &Registry{Partitions: map[string]*Partition{}}
}

func (r *Registry) Put(table string, id uint32, p *Partition) {
	r.Partitions[key(table, id)] = p
}

func (r *Registry) PartitionByID(table string, id uint32) (partition.Partition, bool) {
	p, ok := r.Partitions[key(table, id)]
	if !ok {
		return nil, false
	}
	return p, true
}

func key(table string, id uint32) string {
	return table + "/" + itoa(id)
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
