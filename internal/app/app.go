package app

import (
	"github.com/spf13/cobra"

	"github.com/xab-mack/tactscan/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "tactscan", Short: "Static analyzer for Tact smart contracts"}
	cli.AddCommands(root)
	return root
}
