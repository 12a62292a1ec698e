package syncpb

import (
	"context"

	"google.golang.org/grpc"
)

// BinlogSyncClient is the client side of the BinlogSync service: one
// unary call per tick, dialed once per peer and reused.
type BinlogSyncClient interface {
	Sync(ctx context.Context, in *SyncRequest) (*SyncResponse, error)
}

type binlogSyncClient struct {
	cc *grpc.ClientConn
}

// NewBinlogSyncClient wraps an already-dialed connection.
func NewBinlogSyncClient(cc *grpc.ClientConn) BinlogSyncClient {
	return &binlogSyncClient{cc: cc}
}

func (c *binlogSyncClient) Sync(ctx context.Context, in *SyncRequest) (*SyncResponse, error) {
	out := new(SyncResponse)
	err := c.cc.Invoke(ctx, "/syncpb.BinlogSync/Sync", in, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BinlogSyncServer is the server side a follower implements to receive
// CMD/SKIP/LEASE messages.
type BinlogSyncServer interface {
	Sync(context.Context, *SyncRequest) (*SyncResponse, error)
}

func _BinlogSync_Sync_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SyncRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BinlogSyncServer).Sync(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/syncpb.BinlogSync/Sync",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BinlogSyncServer).Sync(ctx, req.(*SyncRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// BinlogSync_ServiceDesc is the hand-written service descriptor standing
// in for what protoc-gen-go-grpc would have generated from a .proto file
// this exercise has no source for.
var BinlogSync_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "syncpb.BinlogSync",
	HandlerType: (*BinlogSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sync",
			Handler:    _BinlogSync_Sync_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "syncpb/sync.proto",
}

// RegisterBinlogSyncServer registers srv against s, the way
// protoc-gen-go-grpc's generated RegisterXServer functions do.
func RegisterBinlogSyncServer(s grpc.ServiceRegistrar, srv BinlogSyncServer) {
	s.RegisterService(&BinlogSync_ServiceDesc, srv)
}
