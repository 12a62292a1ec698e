// Package start implements the "start" subcommand: read the daemon's yaml
// config, wire an internal/di.Container, and run its workers until a
// termination signal arrives. Grounded on
// _examples/alpacahq-marketstore/cmd/start/main.go's
// read-config/build-container/serve/signal-handle shape.
package start

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luzijia/zeppelin/internal/config"
	"github.com/luzijia/zeppelin/internal/di"
	"github.com/luzijia/zeppelin/internal/host"
	"github.com/luzijia/zeppelin/internal/log"
	"github.com/luzijia/zeppelin/internal/partition"
)

const (
	usage                 = "start"
	short                 = "Start the binlog sender daemon"
	long                  = "Start the binlog sender daemon: read the yaml config, seed configured tasks, and run the SenderWorker pool until terminated"
	example               = "binlogsenderd start --config <path>"
	defaultConfigFilePath = "./binlogsenderd.yml"
	configDesc            = "set the path for the binlogsenderd YAML configuration file"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Example: example,
		RunE:    executeStart,
	}
	configFilePath string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	Cmd.Flags().StringVarP(&configFilePath, "config", "c", defaultConfigFilePath, configDesc)
}

// Collaborators are this daemon's two external dependencies the sender
// core itself never owns: the hosting node's availability/epoch state and
// its partition registry. A real deployment calls SetCollaborators with
// its own singletons before Execute runs the start subcommand; nothing in
// this module provides a production implementation of either.
var collaborators struct {
	host host.Host
	reg  partition.Registry
}

// SetCollaborators wires the host/partition-registry singletons owned by
// the rest of the data node into the start subcommand.
func SetCollaborators(h host.Host, reg partition.Registry) {
	collaborators.host = h
	collaborators.reg = reg
}

func executeStart(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	cmd.SilenceUsage = true

	log.Info("using %v for configuration", configFilePath)
	cfg, err := config.ParseConfig(data)
	if err != nil {
		return fmt.Errorf("failed to parse configuration file: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	if collaborators.host == nil || collaborators.reg == nil {
		return fmt.Errorf("no host/partition registry wired: call start.SetCollaborators before Execute")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := di.NewContainer(cfg, collaborators.host, collaborators.reg)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-signalChan
		log.Info("initiating graceful shutdown due to %q", s)
		cancel()
	}()

	log.Info("starting %d sender workers", cfg.WorkerCount)
	c.Run(ctx)
	log.Info("exiting")
	return nil
}
