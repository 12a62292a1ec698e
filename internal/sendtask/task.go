// Package sendtask implements one replication stream: a BinlogReader plus
// cursor, peer identity, and pre-send scratch, the way
// original_source/src/node/zp_binlog_sender.cc's ZPBinlogSendTask does.
package sendtask

import (
	"fmt"
	"time"

	"github.com/luzijia/zeppelin/internal/binlog"
	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/log"
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/partition"
	"github.com/luzijia/zeppelin/internal/syncpb"
)

// Pre is the snapshot taken before each Consume, used to rebuild the
// outbound message on a send retry without re-reading the log.
type Pre struct {
	Filenum    uint32
	Offset     uint64
	HasContent bool
	Content    []byte
}

// SendTask is one (table, partition, target) replication stream.
type SendTask struct {
	// SendNext is true when the next loop iteration should advance the
	// reader; false means retry sending the current Pre snapshot.
	SendNext bool

	sequence     uint64
	name         string
	table        string
	partitionID  uint32
	target       offset.Node
	binlogPrefix string
	dir          string

	cursor offset.BinlogOffset
	pre    Pre

	processErrorTime time.Time

	reader *binlog.Reader

	host  host.Host
	parts partition.Registry
}

// Name is the pool-unique identity of a task over (table, partition, target).
func Name(table string, partitionID uint32, target offset.Node) string {
	return fmt.Sprintf("%s_%d_%s_%d", table, partitionID, target.IP, target.Port)
}

// Create opens binlog.<filenum> under dir, seeks to offset, and returns a
// task ready to be added to a pool. On failure the partial object is
// discarded; the caller gets a nil task and an io_error/invalid_argument.
func Create(
	sequence uint64,
	table string,
	partitionID uint32,
	binlogPrefix string,
	target offset.Node,
	dir string,
	filenum uint32,
	startOffset uint64,
	h host.Host,
	parts partition.Registry,
) (*SendTask, error) {
	reader, err := binlog.Open(dir, binlogPrefix, filenum)
	if err != nil {
		return nil, err
	}
	if err := reader.Seek(startOffset); err != nil {
		reader.Close()
		return nil, err
	}
	return &SendTask{
		SendNext:     true,
		sequence:     sequence,
		name:         Name(table, partitionID, target),
		table:        table,
		partitionID:  partitionID,
		target:       target,
		binlogPrefix: binlogPrefix,
		dir:          dir,
		cursor:       offset.BinlogOffset{Filenum: filenum, Offset: startOffset},
		reader:       reader,
		host:         h,
		parts:        parts,
	}, nil
}

func (t *SendTask) Sequence() uint64             { return t.sequence }
func (t *SendTask) Name() string                 { return t.name }
func (t *SendTask) Table() string                { return t.table }
func (t *SendTask) PartitionID() uint32          { return t.partitionID }
func (t *SendTask) Target() offset.Node          { return t.target }
func (t *SendTask) Cursor() offset.BinlogOffset  { return t.cursor }
func (t *SendTask) Filenum() uint32              { return t.cursor.Filenum }
func (t *SendTask) ProcessErrorTime() time.Time  { return t.processErrorTime }
func (t *SendTask) StampProcessErrorTime(now time.Time) {
	t.processErrorTime = now
}

// Close releases the task's file handle. Called when the task is
// destroyed (explicit Remove, or a stale PutBack).
func (t *SendTask) Close() error {
	if t.reader == nil {
		return nil
	}
	return t.reader.Close()
}

// ProcessTask performs exactly one logical step: see spec.md §4.2.
func (t *SendTask) ProcessTask() error {
	part, ok := t.parts.PartitionByID(t.table, t.partitionID)
	if !ok || !part.Opened() {
		return errs.New(errs.InvalidArgument, "partition %s/%d is unknown or closed", t.table, t.partitionID)
	}

	end := part.BinlogOffset()
	if t.cursor.Equal(end) {
		return errs.New(errs.EndFile, "no more binlog item")
	}

	t.pre = Pre{Filenum: t.cursor.Filenum, Offset: t.cursor.Offset}

	payload, consumed, err := t.reader.Consume()
	switch {
	case err == nil:
		t.pre.Content = payload
		t.pre.HasContent = true
		t.cursor.Offset += uint64(consumed)
		return nil

	case errs.Is(err, errs.EndFile):
		nextFilenum := t.cursor.Filenum + 1
		if !binlog.Exists(t.dir, t.binlogPrefix, nextFilenum) {
			log.Warn("read end of binlog file but binlog file for filenum %d does not exist yet, table=%s partition=%d target=%s",
				nextFilenum, t.table, t.partitionID, t.target)
			return errs.New(errs.EndFile, "no more binlog item")
		}
		next, openErr := binlog.Open(t.dir, t.binlogPrefix, nextFilenum)
		if openErr != nil {
			log.Warn("failed to roll to binlog filenum %d: %v, table=%s partition=%d target=%s",
				nextFilenum, openErr, t.table, t.partitionID, t.target)
			return openErr
		}
		log.Info("rolling to binlog filenum %d, table=%s partition=%d target=%s",
			nextFilenum, t.table, t.partitionID, t.target)
		t.reader.Close()
		t.reader = next
		t.cursor = offset.BinlogOffset{Filenum: nextFilenum, Offset: 0}
		return t.ProcessTask()

	case errs.Is(err, errs.Incomplete):
		log.Warn("incomplete record at %s, table=%s partition=%d target=%s: %v",
			t.cursor, t.table, t.partitionID, t.target, err)
		t.pre.HasContent = false
		t.cursor.Offset += uint64(consumed)
		return nil

	default:
		log.Warn("failed to consume at %s, table=%s partition=%d target=%s: %v, skipping to next block",
			t.cursor, t.table, t.partitionID, t.target, err)
		skipped := t.reader.SkipNextBlock()
		t.pre.HasContent = false
		t.cursor.Offset += uint64(consumed + skipped)
		return nil
	}
}

// BuildCommonSyncRequest populates a CMD or SKIP message from the current
// Pre snapshot, per spec.md §4.2.
func (t *SendTask) BuildCommonSyncRequest() *syncpb.SyncRequest {
	msg := &syncpb.SyncRequest{
		Epoch:      t.host.MetaEpoch(),
		From:       &syncpb.Node{Ip: t.host.LocalIP(), Port: uint32(t.host.LocalPort())},
		SyncOffset: &syncpb.SyncOffset{Filenum: t.pre.Filenum, Offset: t.pre.Offset},
	}
	if t.pre.HasContent {
		msg.SyncType = syncpb.SyncType_CMD
		msg.Request = t.pre.Content
	} else {
		msg.SyncType = syncpb.SyncType_SKIP
		msg.BinlogSkip = &syncpb.BinlogSkip{
			TableName:   t.table,
			PartitionId: t.partitionID,
			Gap:         t.cursor.Offset - t.pre.Offset,
		}
	}
	return msg
}

// BuildLeaseSyncRequest populates a LEASE message.
func (t *SendTask) BuildLeaseSyncRequest(leaseSeconds int64) *syncpb.SyncRequest {
	return &syncpb.SyncRequest{
		SyncType: syncpb.SyncType_LEASE,
		Epoch:    t.host.MetaEpoch(),
		From:     &syncpb.Node{Ip: t.host.LocalIP(), Port: uint32(t.host.LocalPort())},
		SyncLease: &syncpb.SyncLease{
			TableName:   t.table,
			PartitionId: t.partitionID,
			LeaseSecond: leaseSeconds,
		},
	}
}
