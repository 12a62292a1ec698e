// Package config reads the daemon's yaml configuration file into a typed
// Config, the way utils.MktsConfig.Parse does in the teacher tree.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/luzijia/zeppelin/internal/log"
)

// SeedTask is one statically configured replication stream to create at
// startup: send table/partition's binlog, from (filenum, offset), to
// target. Dynamic add/remove of tasks at runtime is out of scope for this
// core (spec.md §1) — a real deployment adds/removes tasks through
// whatever control plane owns the partition registry, which is external.
type SeedTask struct {
	Table        string
	PartitionID  uint32
	TargetIP     string
	TargetPort   uint16
	StartFilenum uint32
	StartOffset  uint64
}

// Config holds everything internal/di needs to wire a running daemon:
// where the binlogs live, how many SenderWorkers to run, and which
// streams to start sending on boot.
type Config struct {
	BinlogDirectory string
	BinlogPrefix    string
	ListenPort      string
	WorkerCount     int
	LogLevel        log.Level
	SeedTasks       []SeedTask
}

// defaultWorkerCount matches spec.md §5's "design default: a handful, ~4".
const defaultWorkerCount = 4

// ParseConfig decodes a yaml document into a Config, filling in defaults
// the way MktsConfig.Parse does for its own fields.
func ParseConfig(data []byte) (*Config, error) {
	var aux struct {
		BinlogDirectory string `yaml:"binlog_directory"`
		BinlogPrefix    string `yaml:"binlog_prefix"`
		ListenPort      string `yaml:"listen_port"`
		WorkerCount     int    `yaml:"worker_count"`
		LogLevel        string `yaml:"log_level"`
		SeedTasks       []struct {
			Table        string `yaml:"table"`
			PartitionID  uint32 `yaml:"partition_id"`
			TargetIP     string `yaml:"target_ip"`
			TargetPort   uint16 `yaml:"target_port"`
			StartFilenum uint32 `yaml:"start_filenum"`
			StartOffset  uint64 `yaml:"start_offset"`
		} `yaml:"seed_tasks"`
	}
	if err := yaml.Unmarshal(data, &aux); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}

	if aux.BinlogDirectory == "" {
		return nil, errors.New("invalid binlog_directory")
	}
	if aux.ListenPort == "" {
		return nil, errors.New("invalid listen_port")
	}

	cfg := &Config{
		BinlogDirectory: aux.BinlogDirectory,
		BinlogPrefix:    aux.BinlogPrefix,
		ListenPort:      aux.ListenPort,
		WorkerCount:     aux.WorkerCount,
		LogLevel:        log.INFO,
	}
	if cfg.BinlogPrefix == "" {
		cfg.BinlogPrefix = "binlog"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if aux.LogLevel != "" {
		lvl, err := parseLevel(aux.LogLevel)
		if err != nil {
			log.Error("invalid log_level %q, keeping info: %v", aux.LogLevel, err)
		} else {
			cfg.LogLevel = lvl
		}
	}
	for _, s := range aux.SeedTasks {
		cfg.SeedTasks = append(cfg.SeedTasks, SeedTask{
			Table:        s.Table,
			PartitionID:  s.PartitionID,
			TargetIP:     s.TargetIP,
			TargetPort:   s.TargetPort,
			StartFilenum: s.StartFilenum,
			StartOffset:  s.StartOffset,
		})
	}

	return cfg, nil
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARNING, nil
	case "error":
		return log.ERROR, nil
	case "fatal":
		return log.FATAL, nil
	default:
		return log.INFO, errors.New("unknown level " + strconv.Quote(s))
	}
}

// StopGracePeriod matches the teacher's own shutdown-timeout convention.
// Nothing in this module reads it: internal/di's Run waits for its workers
// to return after cancellation without a deadline.
const StopGracePeriod = 5 * time.Second
