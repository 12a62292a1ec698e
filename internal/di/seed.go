package di

import (
	"context"
	"fmt"
	"time"

	"github.com/luzijia/zeppelin/internal/config"
	"github.com/luzijia/zeppelin/internal/errs"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/log"
	"github.com/luzijia/zeppelin/internal/offset"
	"github.com/luzijia/zeppelin/internal/partition"
	"github.com/luzijia/zeppelin/internal/retry"
	"github.com/luzijia/zeppelin/internal/taskpool"
)

// seedRetryInterval/seedRetryBackoffCoeff space SeedTasks' attempts while a
// task's binlog file does not exist yet: the first retry waits
// seedRetryInterval, each later one seedRetryBackoffCoeff times longer. They
// set no overall limit; SeedTasks gives up on a task only when ctx ends.
const (
	seedRetryInterval     = 2 * time.Second
	seedRetryBackoffCoeff = 2
)

// SeedTasks adds every statically configured task to pool. The binlog
// writer and this sender are started independently, so the very first
// binlog file for a freshly added partition may not exist yet; that
// io_error is retried with backoff instead of aborting the daemon, the
// same way internal/di's teacher counterpart wraps replication startup in
// a Retryer rather than failing outright on a transient dial error.
func SeedTasks(ctx context.Context, pool *taskpool.TaskPool, cfg *config.Config, h host.Host, reg partition.Registry) {
	for _, s := range cfg.SeedTasks {
		s := s
		target := offset.Node{IP: s.TargetIP, Port: s.TargetPort}

		addOnce := func(ctx context.Context) error {
			_, err := pool.AddNewTask(
				s.Table, s.PartitionID, cfg.BinlogPrefix, target,
				cfg.BinlogDirectory, s.StartFilenum, s.StartOffset,
				false, h, reg,
			)
			if errs.Is(err, errs.IOError) {
				return fmt.Errorf("%w: %v", retry.ErrRetryable, err)
			}
			return err
		}

		r := retry.New(addOnce, seedRetryInterval, seedRetryBackoffCoeff)
		if err := r.Run(ctx); err != nil {
			log.Error("failed to seed task for table=%s partition=%d target=%s: %v", s.Table, s.PartitionID, target, err)
		}
	}
}
