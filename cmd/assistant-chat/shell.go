package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/widget"
)

const helpText = `Commands:
  /open /close /toggle   show or hide the chat
  /page <path>           tell the assistant which page you are on
  /action <n|id>         run a quick action by number or id
  /actions               list the current quick actions
  /poll                  check reminders and suggestions now
  /history               print the whole transcript
  /quit                  leave`

// command is one parsed input line. An empty name means plain text.
type command struct {
	name string
	arg  string
}

func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{arg: line}
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}
}

// controller is the part of the widget the shell drives.
type controller interface {
	Send(ctx context.Context, text string) error
	InvokeQuickAction(ctx context.Context, action string) error
	SetPage(page string) error
	Open() error
	CloseChat() error
	Toggle() error
	Poll(ctx context.Context)
	Transcript() []widget.Entry
	QuickActions() []domain.QuickAction
}

var _ controller = (*widget.Widget)(nil)

type shell struct {
	w     controller
	print *printer
}

// handle runs one input line and reports whether the user asked to quit.
func (s *shell) handle(ctx context.Context, line string) bool {
	cmd := parseCommand(line)

	var err error
	switch cmd.name {
	case "":
		if cmd.arg == "" {
			return false
		}
		err = s.w.Send(ctx, cmd.arg)
	case "quit", "exit":
		return true
	case "help":
		s.print.line(helpText)
	case "open":
		err = s.w.Open()
	case "close":
		err = s.w.CloseChat()
	case "toggle":
		err = s.w.Toggle()
	case "page":
		if cmd.arg == "" {
			s.print.line("usage: /page <path>")
			return false
		}
		err = s.w.SetPage(cmd.arg)
	case "actions":
		s.print.line(s.print.render.QuickActions(s.w.QuickActions()))
	case "action":
		action, ok := s.resolveAction(cmd.arg)
		if !ok {
			s.print.line("unknown quick action " + strconv.Quote(cmd.arg))
			return false
		}
		err = s.w.InvokeQuickAction(ctx, action)
	case "poll":
		s.w.Poll(ctx)
	case "history":
		for _, e := range s.w.Transcript() {
			s.print.line(s.print.render.Entry(e))
		}
	default:
		s.print.line("unknown command /" + cmd.name + ", try /help")
	}

	switch {
	case err == nil:
	case errors.Is(err, widget.ErrBusy):
		s.print.line("Still waiting for the previous reply.")
	case errors.Is(err, widget.ErrTransport), errors.Is(err, widget.ErrApplication):
		// the apology entry is already in the transcript
	default:
		s.print.line("error: " + err.Error())
	}
	return false
}

// resolveAction accepts a 1-based index into the displayed quick actions or
// a raw action id.
func (s *shell) resolveAction(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		actions := s.w.QuickActions()
		if n < 1 || n > len(actions) {
			return "", false
		}
		return actions[n-1].Action, true
	}
	return arg, true
}

// printer writes widget events to the terminal.
type printer struct {
	out    io.Writer
	mu     *sync.Mutex
	render *widget.Renderer
}

func (p *printer) line(s string) {
	if s == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

func (p *printer) event(ev widget.Event) {
	switch ev.Kind {
	case widget.EventEntryAdded:
		if ev.Entry.Visible && ev.Entry.Sender != domain.SenderUser {
			p.line(p.render.Entry(ev.Entry))
		}
	case widget.EventEntryRevealed:
		p.line(p.render.Entry(ev.Entry))
	case widget.EventTyping:
		if ev.Typing {
			p.line(p.render.Typing())
		}
	case widget.EventQuickActions:
		p.line(p.render.QuickActions(ev.QuickActions))
	case widget.EventIndicator:
		if ev.Indicator.Badge > 0 {
			p.line(p.render.Indicator(ev.Indicator))
		}
	case widget.EventChatToggled:
		if ev.Open {
			p.line("── chat opened ──")
		} else {
			p.line("── chat closed ──")
		}
	case widget.EventStateChanged:
		if ev.State == widget.StateUnavailable {
			p.line("── assistant unavailable ──")
		}
	case widget.EventNotification:
	}
}
