// Package syncpb carries the outbound wire messages this core builds:
// CMD/SKIP/LEASE sync requests and their response, and the gRPC service
// that ships them to a peer.
//
// No .proto source for this protocol exists to run protoc against, so the
// generated-style message types below are hand-written in the same shape
// protoc-gen-go produced before the APIv2 rewrite: plain structs with
// `protobuf:` struct tags plus Reset/String/ProtoMessage, which
// github.com/golang/protobuf's legacy-message support still marshals and
// unmarshals correctly through the v1.5 shim over google.golang.org/protobuf.
package syncpb

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// SyncType distinguishes the three outbound message shapes.
type SyncType int32

const (
	SyncType_CMD   SyncType = 0
	SyncType_SKIP  SyncType = 1
	SyncType_LEASE SyncType = 2
)

func (t SyncType) String() string {
	switch t {
	case SyncType_CMD:
		return "CMD"
	case SyncType_SKIP:
		return "SKIP"
	case SyncType_LEASE:
		return "LEASE"
	default:
		return fmt.Sprintf("SyncType(%d)", int32(t))
	}
}

// Node is the sender's own listen address, stamped into every message.
type Node struct {
	Ip   string `protobuf:"bytes,1,opt,name=ip,proto3" json:"ip,omitempty"`
	Port uint32 `protobuf:"varint,2,opt,name=port,proto3" json:"port,omitempty"`
}

func (m *Node) Reset()         { *m = Node{} }
func (m *Node) String() string { return proto.CompactTextString(m) }
func (m *Node) ProtoMessage()  {}

// SyncOffset is a (filenum, offset) cursor position, carried in CMD and
// SKIP messages as the pre-consume snapshot.
type SyncOffset struct {
	Filenum uint32 `protobuf:"varint,1,opt,name=filenum,proto3" json:"filenum,omitempty"`
	Offset  uint64 `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
}

func (m *SyncOffset) Reset()         { *m = SyncOffset{} }
func (m *SyncOffset) String() string { return proto.CompactTextString(m) }
func (m *SyncOffset) ProtoMessage()  {}

// BinlogSkip describes a gap the follower must advance its cursor past
// without a corresponding command, e.g. across a torn tail or corrupt
// block.
type BinlogSkip struct {
	TableName   string `protobuf:"bytes,1,opt,name=table_name,json=tableName,proto3" json:"table_name,omitempty"`
	PartitionId uint32 `protobuf:"varint,2,opt,name=partition_id,json=partitionId,proto3" json:"partition_id,omitempty"`
	Gap         uint64 `protobuf:"varint,3,opt,name=gap,proto3" json:"gap,omitempty"`
}

func (m *BinlogSkip) Reset()         { *m = BinlogSkip{} }
func (m *BinlogSkip) String() string { return proto.CompactTextString(m) }
func (m *BinlogSkip) ProtoMessage()  {}

// SyncLease advertises an upper bound on time until the sender's next
// contact for this (table, partition).
type SyncLease struct {
	TableName   string `protobuf:"bytes,1,opt,name=table_name,json=tableName,proto3" json:"table_name,omitempty"`
	PartitionId uint32 `protobuf:"varint,2,opt,name=partition_id,json=partitionId,proto3" json:"partition_id,omitempty"`
	LeaseSecond int64  `protobuf:"varint,3,opt,name=lease_second,json=leaseSecond,proto3" json:"lease_second,omitempty"`
}

func (m *SyncLease) Reset()         { *m = SyncLease{} }
func (m *SyncLease) String() string { return proto.CompactTextString(m) }
func (m *SyncLease) ProtoMessage()  {}

// SyncRequest is the single outbound message shape; SyncType selects which
// of Request, BinlogSkip, SyncLease is populated.
type SyncRequest struct {
	SyncType   SyncType    `protobuf:"varint,1,opt,name=sync_type,json=syncType,proto3,enum=syncpb.SyncType" json:"sync_type,omitempty"`
	Epoch      uint64      `protobuf:"varint,2,opt,name=epoch,proto3" json:"epoch,omitempty"`
	From       *Node       `protobuf:"bytes,3,opt,name=from,proto3" json:"from,omitempty"`
	SyncOffset *SyncOffset `protobuf:"bytes,4,opt,name=sync_offset,json=syncOffset,proto3" json:"sync_offset,omitempty"`
	// Request carries the opaque serialized command request for a CMD
	// message; spec.md §6 leaves its own wire shape out of scope, so it
	// travels as the raw bytes read off the binlog.
	Request    []byte      `protobuf:"bytes,5,opt,name=request,proto3" json:"request,omitempty"`
	BinlogSkip *BinlogSkip `protobuf:"bytes,6,opt,name=binlog_skip,json=binlogSkip,proto3" json:"binlog_skip,omitempty"`
	SyncLease  *SyncLease  `protobuf:"bytes,7,opt,name=sync_lease,json=syncLease,proto3" json:"sync_lease,omitempty"`
}

func (m *SyncRequest) Reset()         { *m = SyncRequest{} }
func (m *SyncRequest) String() string { return proto.CompactTextString(m) }
func (m *SyncRequest) ProtoMessage()  {}

// Initialized reports whether every field the message's SyncType requires
// is set, the Go analogue of the original's protobuf "required fields"
// check before sending.
func (m *SyncRequest) Initialized() bool {
	if m.From == nil {
		return false
	}
	switch m.SyncType {
	case SyncType_CMD:
		return m.SyncOffset != nil && len(m.Request) > 0
	case SyncType_SKIP:
		return m.SyncOffset != nil && m.BinlogSkip != nil
	case SyncType_LEASE:
		return m.SyncLease != nil
	default:
		return false
	}
}

// SyncResponse acknowledges receipt; the follower's own apply/ack
// semantics are out of scope for this core.
type SyncResponse struct {
	Epoch uint64 `protobuf:"varint,1,opt,name=epoch,proto3" json:"epoch,omitempty"`
}

func (m *SyncResponse) Reset()         { *m = SyncResponse{} }
func (m *SyncResponse) String() string { return proto.CompactTextString(m) }
func (m *SyncResponse) ProtoMessage()  {}
