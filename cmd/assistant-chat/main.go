package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/widget"
)

type options struct {
	baseURL      string
	page         string
	userID       string
	role         string
	name         string
	email        string
	pollInterval time.Duration
	noColor      bool
	logLevel     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	opts := options{}
	cmd := &cobra.Command{
		Use:          "assistant-chat",
		Short:        "Chat with the Invensis portal assistant from a terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.baseURL, "url", envOr("ASSISTANT_URL", "http://localhost:8080"), "assistant API base URL")
	f.StringVar(&opts.page, "page", "/dashboard", "portal page the chat starts on")
	f.StringVar(&opts.userID, "user-id", "", "portal user id")
	f.StringVar(&opts.role, "role", "visitor", "portal role: admin, hr, manager, cluster or visitor")
	f.StringVar(&opts.name, "name", "", "display name")
	f.StringVar(&opts.email, "email", "", "portal email, used for reminders")
	f.DurationVar(&opts.pollInterval, "poll", time.Minute, "notification poll interval, 0 disables polling")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	return cmd
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	client := widget.NewClient(opts.baseURL, widget.WithIdentity(domain.Identity{
		UserID: domain.UserID(opts.userID),
		Role:   domain.ParseRole(opts.role),
		Name:   opts.name,
		Email:  opts.email,
	}))

	var outMu sync.Mutex
	printer := &printer{out: out, mu: &outMu, render: widget.NewRenderer(!opts.noColor)}

	poll := opts.pollInterval
	if poll <= 0 {
		poll = -1
	}
	w, err := widget.New(widget.Options{
		API:          client,
		Logger:       &logger,
		OnEvent:      printer.event,
		PollInterval: poll,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx, opts.page); err != nil {
		printer.line("The assistant is unavailable right now.")
		return err
	}
	printer.line("Type a message, or /help for commands.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	sh := &shell{w: w, print: printer}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := sh.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
