// Package dumptasks implements the "dump-tasks" debug subcommand, the
// spirit of _examples/alpacahq-marketstore/cmd/tool/wal's WAL debug tool
// adapted to inspect a running TaskPool's msgpack snapshot instead of a
// WAL file.
package dumptasks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/luzijia/zeppelin/internal/taskpool"
)

const (
	usage   = "dump-tasks"
	short   = "Decode a TaskPool msgpack snapshot file and print it as JSON"
	example = "binlogsenderd dump-tasks --in tasks.msgpack"
)

var (
	// Cmd is the dump-tasks command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Example: example,
		RunE:    executeDumpTasks,
	}
	inputPath string
)

// nolint:gochecknoinits // cobra's standard way to initialize flags
func init() {
	Cmd.Flags().StringVarP(&inputPath, "in", "i", "", "path to a TaskPool.DumpMsgpack() snapshot file")
	_ = Cmd.MarkFlagRequired("in")
}

func executeDumpTasks(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var entries []taskpool.Entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode msgpack snapshot: %w", err)
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render snapshot as json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
