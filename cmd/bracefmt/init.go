package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bracefmt/internal/i18n"
	"bracefmt/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default bracefmt.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		path, err := project.WriteDefault(dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), newLocalizer().Sprintf(i18n.MsgInitialized, path))
		return nil
	},
}
