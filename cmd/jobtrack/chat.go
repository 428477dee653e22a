package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/jobtrack/core"
	"github.com/hupe1980/jobtrack/internal/util"
	"github.com/hupe1980/jobtrack/server"
)

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	owner, _ := cmd.Flags().GetString("user")
	conv, _ := cmd.Flags().GetString("conversation")
	if conv == "" {
		conv = util.NewID()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return chat(ctx, a.jobtrack, cmd.InOrStdin(), cmd.OutOrStdout(), owner, conv)
}

// chat sends every non-empty line of in as a message and prints the reply.
func chat(ctx context.Context, s server.Sender, in io.Reader, out io.Writer, owner, conv string) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		if text == "/quit" || text == "/exit" {
			return nil
		}

		reply, err := s.Run(ctx, core.Message{
			Text:           text,
			OwnerID:        owner,
			ConversationID: conv,
			Timestamp:      time.Now(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n> ", err)
			continue
		}
		fmt.Fprintf(out, "%s\n> ", reply.Text)
	}
	return scanner.Err()
}
