package uploadcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/archiveai/client"
	"github.com/papercomputeco/archiveai/cmd/archive/printer"
	"github.com/papercomputeco/archiveai/cmd/archive/setup"
	"github.com/papercomputeco/archiveai/pkg/conversation"
	"github.com/papercomputeco/archiveai/pkg/logger"
	"github.com/papercomputeco/archiveai/pkg/watch"
	"github.com/papercomputeco/archiveai/session"
)

const uploadLongDesc string = `Upload PDF files to the archive backend.

Each file is POSTed to the backend's /send endpoint as a multipart
form. With --watch, the command then keeps running and uploads every
new PDF that appears in the given directory until interrupted.

Examples:
  archive upload report.pdf minutes.pdf
  archive upload --watch ~/Documents/inbox`

const uploadShortDesc string = "Upload PDF files"

type uploadCommander struct {
	opts     setup.Options
	watchDir string
}

func NewUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: uploadShortDesc,
		Long:  uploadLongDesc,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmder.watchDir == "" {
				return errors.New("requires at least one file or --watch")
			}
			for _, a := range args {
				if !watch.IsPDF(a) {
					return fmt.Errorf("only .pdf files can be uploaded: %s", a)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmder.opts.Register(cmd)
	cmd.Flags().StringVarP(&cmder.watchDir, "watch", "w", "", "Directory to watch for new PDFs")

	return cmd
}

func (c *uploadCommander) run(ctx context.Context, cmd *cobra.Command, files []string) error {
	cfg, err := c.opts.Resolve()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug, cmd.ErrOrStderr())
	defer log.Sync()

	sess := session.New(client.New(cfg.ClientConfig(), log), log)
	out := cmd.OutOrStdout()

	var attempted, failed int
	upload := func(path string) {
		if !sess.SelectFile(path) {
			return
		}
		msg, ok := sess.Upload(ctx)
		if !ok {
			return
		}
		attempted++
		if msg.Kind == conversation.KindError {
			failed++
		}
		printer.Print(out, msg)
	}

	for _, f := range files {
		upload(f)
	}

	if c.watchDir != "" {
		w, err := watch.New(c.watchDir, 0, log)
		if err != nil {
			return fmt.Errorf("could not watch %s: %w", c.watchDir, err)
		}
		defer w.Close()

		fmt.Fprintf(out, "Watching %s for new PDFs (ctrl+c to stop)\n", c.watchDir)
		log.Info("watching directory", zap.String("dir", c.watchDir))

		if err := w.Run(ctx, upload); err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, attempted)
	}
	return nil
}
