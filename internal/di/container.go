// Package di wires the binlog sender daemon's components together, in the
// same lazy-getter shape as the teacher's internal/di/container.go.
package di

import (
	"context"

	"github.com/luzijia/zeppelin/internal/config"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/partition"
	"github.com/luzijia/zeppelin/internal/sender"
	"github.com/luzijia/zeppelin/internal/taskpool"
)

// Container lazily builds and caches every component of a running daemon.
type Container struct {
	cfg  *config.Config
	host host.Host
	reg  partition.Registry

	pool    *taskpool.TaskPool
	workers []*sender.Worker
}

// NewContainer builds a Container over cfg and the two external
// collaborators this core never owns (spec.md §1).
func NewContainer(cfg *config.Config, h host.Host, reg partition.Registry) *Container {
	return &Container{cfg: cfg, host: h, reg: reg}
}

// GetTaskPool returns the shared pool, creating it (and seeding it from
// cfg.SeedTasks) on first call.
func (c *Container) GetTaskPool(ctx context.Context) *taskpool.TaskPool {
	if c.pool != nil {
		return c.pool
	}
	c.pool = taskpool.New()
	SeedTasks(ctx, c.pool, c.cfg, c.host, c.reg)
	return c.pool
}

// GetWorkers returns the configured number of SenderWorkers sharing
// GetTaskPool's pool, creating them on first call.
func (c *Container) GetWorkers(ctx context.Context) []*sender.Worker {
	if c.workers != nil {
		return c.workers
	}
	pool := c.GetTaskPool(ctx)
	c.workers = make([]*sender.Worker, c.cfg.WorkerCount)
	for i := range c.workers {
		c.workers[i] = sender.NewWorker(pool, c.host, c.cfg.WorkerCount)
	}
	return c.workers
}

// Run starts every worker and blocks until ctx is canceled.
func (c *Container) Run(ctx context.Context) {
	workers := c.GetWorkers(ctx)
	done := make(chan struct{}, len(workers))
	for _, w := range workers {
		w := w
		go func() {
			w.Run(ctx)
			done <- struct{}{}
		}()
	}
	for range workers {
		<-done
	}
}
