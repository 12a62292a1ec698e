package sender

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"

	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/log"
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/syncpb"
)

// peerDialTimeout bounds opening a new connection to one peer, and
// peerCallTimeout bounds each blocking SyncRequest/SyncResponse round trip
// on an open one.
const peerDialTimeout = 1 * time.Second
const peerCallTimeout = 1 * time.Second

// peerConn is a lazily-opened, reused connection to one peer, the Go
// counterpart of zp_binlog_sender.cc's peers_ map of pink::PinkCli.
type peerConn struct {
	conn   *grpc.ClientConn
	client syncpb.BinlogSyncClient
}

// peers is the private, worker-owned connection cache from spec.md §4.4 —
// no locking needed, it is never touched by more than one worker.
type peers struct {
	byAddr map[string]*peerConn
}

func newPeers() *peers {
	return &peers{byAddr: map[string]*peerConn{}}
}

// SendToPeer looks up or dials the connection for node, sends msg, and on
// any failure closes and evicts the connection before returning corruption.
// There is no retry here: the caller's send_next flag drives retry.
func (p *peers) SendToPeer(ctx context.Context, node offset.Node, msg *syncpb.SyncRequest) error {
	addr := fmt.Sprintf("%s:%d", node.IP, node.Port)

	pc, ok := p.byAddr[addr]
	if !ok {
		dialCtx, cancel := context.WithTimeout(ctx, peerDialTimeout)
		conn, err := grpc.DialContext(dialCtx, addr,
			grpc.WithInsecure(),
			grpc.WithBlock(),
		)
		cancel()
		if err != nil {
			return errs.New(errs.Corruption, "dial %s: %v", addr, err)
		}
		pc = &peerConn{conn: conn, client: syncpb.NewBinlogSyncClient(conn)}
		p.byAddr[addr] = pc
	}

	callCtx, cancel := context.WithTimeout(ctx, peerCallTimeout)
	defer cancel()
	_, err := pc.client.Sync(callCtx, msg)
	if err != nil {
		log.Warn("send to peer %s failed, dropping connection: %v", addr, err)
		pc.conn.Close()
		delete(p.byAddr, addr)
		return errs.New(errs.Corruption, "send to %s: %v", addr, err)
	}
	return nil
}

// Close releases every cached connection, called when the worker stops.
func (p *peers) Close() {
	for addr, pc := range p.byAddr {
		pc.conn.Close()
		delete(p.byAddr, addr)
	}
}
