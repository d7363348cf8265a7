package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error

	Sanes(ctx context.Context, args []string) error
	San(ctx context.Context, args []string) error
	JoinSan(ctx context.Context, args []string) error
	SanTurns(ctx context.Context, args []string) error
	SanPayments(ctx context.Context, args []string) error
	Participations(ctx context.Context) error

	Rifas(ctx context.Context, args []string) error
	Rifa(ctx context.Context, args []string) error
	BuyTicket(ctx context.Context, args []string) error
	Tickets(ctx context.Context) error

	Invoices(ctx context.Context) error
	Pay(ctx context.Context, args []string) error
	Payment(ctx context.Context, args []string) error

	Comments(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	DeleteComment(ctx context.Context, args []string) error

	Notifications(ctx context.Context) error
	MarkRead(ctx context.Context, args []string) error
	MarkAllRead(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, help, exit"
	userHelp  = `Available commands:
  profile, update, logout
  sanes [filters], san <id>, join <id>, turns <id>, sanpayments <id>, mysanes
  rifas [filters], rifa <id>, buy <rifa id> <numero>, tickets
  invoices, pay <invoice id> <method> [ref], payment <id>
  comments <san|rifa> <id>, comment <san|rifa> <id> [reply-to], delcomment <id>
  notifications, read <id>, readall
  help, exit
Filters: estado=.. frecuencia=.. precio_min=.. precio_max=.. organizador=..`
)

// runREPL starts a simple read–eval–print loop for the SANes CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Commands that need a session are only offered once logged in; a guest
// typing one is asked to log in first.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
// The same reader is shared with the handlers' prompts, so a single buffer
// owns stdin.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sanes%s> ", prefixSpace(statusFn())))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			known, needsLogin := dispatch(ctx, a, cmd, args)
			switch {
			case !known:
				printlnFn("Unknown command:", cmd)
			case needsLogin:
				printlnFn("Please log in first")
			}
		}
	}
}

// dispatch runs commands that need a session. It reports whether cmd is a
// known command and whether it was refused for lack of a session.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) (known, needsLogin bool) {
	var run func() error
	switch cmd {
	case "logout":
		run = func() error { return a.Logout(ctx) }
	case "profile", "whoami":
		run = func() error { return a.Profile(ctx) }
	case "update":
		run = func() error { return a.UpdateProfile(ctx) }
	case "sanes":
		run = func() error { return a.Sanes(ctx, args) }
	case "san":
		run = func() error { return a.San(ctx, args) }
	case "join":
		run = func() error { return a.JoinSan(ctx, args) }
	case "turns":
		run = func() error { return a.SanTurns(ctx, args) }
	case "sanpayments":
		run = func() error { return a.SanPayments(ctx, args) }
	case "mysanes":
		run = func() error { return a.Participations(ctx) }
	case "rifas":
		run = func() error { return a.Rifas(ctx, args) }
	case "rifa":
		run = func() error { return a.Rifa(ctx, args) }
	case "buy":
		run = func() error { return a.BuyTicket(ctx, args) }
	case "tickets":
		run = func() error { return a.Tickets(ctx) }
	case "invoices":
		run = func() error { return a.Invoices(ctx) }
	case "pay":
		run = func() error { return a.Pay(ctx, args) }
	case "payment":
		run = func() error { return a.Payment(ctx, args) }
	case "comments":
		run = func() error { return a.Comments(ctx, args) }
	case "comment":
		run = func() error { return a.Comment(ctx, args) }
	case "delcomment":
		run = func() error { return a.DeleteComment(ctx, args) }
	case "notifications", "n":
		run = func() error { return a.Notifications(ctx) }
	case "read":
		run = func() error { return a.MarkRead(ctx, args) }
	case "readall":
		run = func() error { return a.MarkAllRead(ctx) }
	default:
		return false, false
	}

	if !a.isLoggedIn() {
		return true, true
	}
	_ = run()
	return true, false
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
