// Package offset holds the position and peer-identity primitives shared by
// every layer of the binlog sender: the reader, the per-task cursor, the
// pool index, and the outbound sync messages.
package offset

import "fmt"

// BinlogOffset identifies a byte position within a partition's binlog:
// file number plus byte offset into that file. It is totally ordered:
// (a,b) < (c,d) iff a<c, or a==c and b<d.
type BinlogOffset struct {
	Filenum uint32
	Offset  uint64
}

// Less reports whether o sorts strictly before other.
func (o BinlogOffset) Less(other BinlogOffset) bool {
	if o.Filenum != other.Filenum {
		return o.Filenum < other.Filenum
	}
	return o.Offset < other.Offset
}

// Equal reports whether o and other name the same position.
func (o BinlogOffset) Equal(other BinlogOffset) bool {
	return o.Filenum == other.Filenum && o.Offset == other.Offset
}

func (o BinlogOffset) String() string {
	return fmt.Sprintf("(filenum=%d, offset=%d)", o.Filenum, o.Offset)
}

// Node is the (ip, port) identity of a replication peer.
type Node struct {
	IP   string
	Port uint16
}

func (n Node) String() string {
	return fmt.Sprintf("%s:%d", n.IP, n.Port)
}
