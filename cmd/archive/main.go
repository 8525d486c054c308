package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/archiveai/cmd/archive/ask"
	chatcmder "github.com/papercomputeco/archiveai/cmd/archive/chat"
	"github.com/papercomputeco/archiveai/cmd/archive/setup"
	uploadcmder "github.com/papercomputeco/archiveai/cmd/archive/upload"
)

const rootLongDesc string = `archive is a terminal client for the ArchiveAI backend.

Run it without a subcommand to open the interactive chat.`

// chatRunner opens the interactive chat; chatcmder.Run outside of tests.
type chatRunner func(ctx context.Context, opts setup.Options, dir string) error

func newRootCmd(runChat chatRunner) *cobra.Command {
	var (
		opts setup.Options
		dir  string
	)

	cmd := &cobra.Command{
		Use:          "archive",
		Short:        "Chat with your document archive",
		Long:         rootLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, dir)
		},
	}

	opts.RegisterPersistent(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory the upload picker opens in")

	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(uploadcmder.NewUploadCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(chatcmder.Run).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
