package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bracefmt/internal/driver"
	"bracefmt/internal/i18n"
	"bracefmt/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <dir>",
	Short: "Reformat files under a directory whenever they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a burst of changes is handled")
	addConfigFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	cmd.SilenceUsage = true

	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", root)
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, root)
	if err != nil {
		return err
	}
	opts := driverOptions(cmd, cfg)
	loc := newLocalizer()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	w, err := watch.New(watch.Options{
		Debounce: debounce,
		Accept:   opts.Accepts,
		OnError: func(path string, err error) {
			if path == "" {
				errorColor.Fprintf(errOut, "watch: %v\n", err)
				return
			}
			errorColor.Fprintln(errOut, loc.Sprintf(i18n.MsgFailed, path, err))
		},
	}, formatOnChange(opts, loc, out, quiet))
	if err != nil {
		return err
	}
	if err := w.AddRecursive(root); err != nil {
		_ = w.Close()
		return err
	}

	if !quiet {
		fmt.Fprintln(errOut, loc.Sprintf(i18n.MsgWatching, root))
	}
	return w.Run(cmd.Context())
}

func formatOnChange(opts driver.Options, loc i18n.Localizer, out io.Writer, quiet bool) watch.Handler {
	return func(ctx context.Context, path string) error {
		started := time.Now()
		res := driver.FormatFile(ctx, path, opts)
		if res.Err != nil {
			return res.Err
		}
		if res.Changed && !quiet {
			changedColor.Fprintf(out, "%s %s\n", loc.Sprintf(i18n.MsgFormatted, path), faintColor.Sprintf("(%s)", time.Since(started).Round(time.Millisecond)))
		}
		return nil
	}
}
