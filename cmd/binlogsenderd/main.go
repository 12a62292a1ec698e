// Command binlogsenderd runs the binlog replication sender daemon.
// Grounded on _examples/alpacahq-marketstore/cmd/main.go's root
// command/subcommand-tree shape.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luzijia/zeppelin/cmd/binlogsenderd/dumptasks"
	"github.com/luzijia/zeppelin/cmd/binlogsenderd/start"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	root := &cobra.Command{
		Use: "binlogsenderd",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	root.AddCommand(start.Cmd)
	root.AddCommand(dumptasks.Cmd)
	return root.Execute()
}
