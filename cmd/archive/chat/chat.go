package chatcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/archiveai/client"
	"github.com/papercomputeco/archiveai/cmd/archive/setup"
	"github.com/papercomputeco/archiveai/pkg/logger"
	"github.com/papercomputeco/archiveai/session"
	"github.com/papercomputeco/archiveai/tui"
)

const chatLongDesc string = `Open the interactive chat.

The chat greets you with a message from the backend, then sends every
prompt you submit to /query and shows the reply. Press ctrl+o to pick
a PDF to upload. Logs go to the configured log file because the chat
takes over the terminal.

Examples:
  archive chat
  archive chat --url http://10.0.0.5:3000 --dir ~/Documents`

const chatShortDesc string = "Open the interactive chat"

type chatCommander struct {
	opts setup.Options
	dir  string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), cmder.opts, cmder.dir)
		},
	}

	cmder.opts.Register(cmd)
	cmd.Flags().StringVarP(&cmder.dir, "dir", "d", "", "Directory the upload picker opens in")

	return cmd
}

// Run opens the interactive chat with the given options. dir is where the
// upload picker opens; empty means the working directory.
func Run(ctx context.Context, opts setup.Options, dir string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("chat needs an interactive terminal; use 'archive ask' instead")
	}

	cfg, err := opts.Resolve()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.NewFileLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer closeLog()

	sess := session.New(client.New(cfg.ClientConfig(), log), log)
	log.Info("archive chat starting",
		zap.String("session_id", sess.ID()),
		zap.String("backend", cfg.BaseURL),
		zap.Bool("debug", cfg.Debug),
	)

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	model := tui.New(ctx, sess, log, tui.Options{
		GlamourStyle: style,
		StartDir:     dir,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat failed: %w", err)
	}

	log.Info("archive chat finished", zap.Int("messages", len(sess.Messages())))
	return nil
}
