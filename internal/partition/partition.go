// Package partition defines the binlog-writer side's interface, out of
// scope for this core but consumed to find the current durable end offset
// of a (table, partition) before reading further.
package partition

import "github.com/luzijia/zeppelin/internal/offset"

// Partition is one (table, partition_id)'s write-ahead binlog, as seen
// from the read side.
type Partition interface {
	// Opened reports whether the partition is currently serving; a
	// closed or reassigned partition makes every task against it
	// invalid_argument.
	Opened() bool
	// BinlogOffset returns the current durable end of this partition's
	// binlog: the position a SendTask's cursor catches up to before it
	// reports end_file.
	BinlogOffset() offset.BinlogOffset
}

// Registry looks up partitions by (table, id). It is itself thread-safe
// and out of scope for this core to implement.
type Registry interface {
	PartitionByID(table string, id uint32) (Partition, bool)
}
