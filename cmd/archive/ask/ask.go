package askcmder

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/archiveai/client"
	"github.com/papercomputeco/archiveai/cmd/archive/printer"
	"github.com/papercomputeco/archiveai/cmd/archive/setup"
	"github.com/papercomputeco/archiveai/pkg/conversation"
	"github.com/papercomputeco/archiveai/pkg/logger"
	"github.com/papercomputeco/archiveai/session"
)

const askLongDesc string = `Send prompts to the archive backend without the interactive chat.

With arguments, the joined arguments are sent as a single prompt.
Without arguments, every line read from stdin is sent as its own
prompt; blank lines are skipped. The transcript is printed as it grows.

Examples:
  archive ask "What do my notes say about the Q3 budget?"
  archive ask --greet --url http://10.0.0.5:3000 "summarize report.pdf"
  cat questions.txt | archive ask`

const askShortDesc string = "Send prompts from the command line"

type askCommander struct {
	opts  setup.Options
	greet bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmder.opts.Register(cmd)
	cmd.Flags().BoolVar(&cmder.greet, "greet", false, "Fetch and print the greeting first")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := c.opts.Resolve()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug, cmd.ErrOrStderr())
	defer log.Sync()

	sess := session.New(client.New(cfg.ClientConfig(), log), log)
	out := cmd.OutOrStdout()

	if c.greet {
		sess.Greet(ctx)
		printer.PrintAll(out, sess.Messages())
	}

	var prompts []string
	if len(args) > 0 {
		prompts = []string{strings.Join(args, " ")}
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			prompts = append(prompts, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("could not read prompts: %w", err)
		}
	}

	var sent, failed int
	for _, prompt := range prompts {
		if ctx.Err() != nil {
			break
		}

		seen := len(sess.Messages())
		sess.SetDraft(prompt)
		msg, ok := sess.Submit(ctx)
		if !ok {
			continue
		}

		sent++
		if msg.Kind == conversation.KindError {
			failed++
		}
		printer.PrintAll(out, sess.Messages()[seen:])
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d prompts failed", failed, sent)
	}
	return nil
}
