package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// LoginFlow re-authenticates after a forced logout. It may prompt through
// the REPL it is given.
type LoginFlow func(ctx context.Context, r *REPL) error

var builtins = []string{"exit", "quit", "help", "history"}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	rawIn     io.Reader
	input     *bufio.Reader
	output    io.Writer
	execute   Executor
	completer *Completer
	history   *History
	prompt    func() string
	login     LoginFlow
	onError   func(io.Writer, error)
	log       logger.Logger

	loginPending atomic.Bool
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams (stdin/stdout by default).
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.rawIn = in
		r.output = out
	}
}

// WithPrompt sets a prompt function evaluated before every line.
func WithPrompt(fn func() string) Option {
	return func(r *REPL) { r.prompt = fn }
}

// WithLoginFlow sets the flow run after ToLogin.
func WithLoginFlow(fn LoginFlow) Option {
	return func(r *REPL) { r.login = fn }
}

// WithCompleter sets the completer.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) { r.completer = c }
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithErrorHandler replaces the default "Error: ..." printer. Handlers may
// stay silent for errors the user has already seen.
func WithErrorHandler(fn func(io.Writer, error)) Option {
	return func(r *REPL) { r.onError = fn }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *REPL) { r.log = l }
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		rawIn:   os.Stdin,
		output:  os.Stdout,
		execute: exec,
		prompt:  func() string { return "cmsadmin> " },
		onError: func(w io.Writer, err error) { fmt.Fprintf(w, "Error: %v\n", err) },
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.completer == nil {
		r.completer = NewCompleter()
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	r.input = bufio.NewReader(r.rawIn)
	return r
}

// ToLogin schedules the login flow before the next command. It makes the
// REPL usable as the API client's navigator; concurrent calls collapse into
// one pending login.
func (r *REPL) ToLogin() {
	r.loginPending.Store(true)
}

// LoginPending reports whether a forced re-login is scheduled.
func (r *REPL) LoginPending() bool {
	return r.loginPending.Load()
}

// Output returns the REPL's output stream.
func (r *REPL) Output() io.Writer {
	return r.output
}

// ReadLine prints prompt and reads one line without its newline.
func (r *REPL) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.output, prompt)
	line, err := r.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret reads a line without echo when the input is a terminal.
func (r *REPL) ReadSecret(prompt string) (string, error) {
	if f, ok := r.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) && r.input.Buffered() == 0 {
		fmt.Fprint(r.output, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.output)
		return string(b), err
	}
	return r.ReadLine(prompt)
}

// Run starts the loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		r.log.Warn("load history", "error", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			r.log.Warn("save history", "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.loginPending.Swap(false) && r.login != nil {
			fmt.Fprintln(r.output, "Session ended. Please log in again.")
			if err := r.login(ctx, r); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				r.onError(r.output, err)
			}
			continue
		}

		line, err := r.ReadLine(r.prompt())
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if prefix, ok := strings.CutSuffix(line, "?"); ok {
			r.showCompletions(prefix)
			continue
		}

		r.history.Add(line)

		args, err := Split(line)
		if err != nil {
			r.onError(r.output, err)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			if len(args) == 1 {
				r.showCompletions("")
				continue
			}
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
			}
			continue
		}

		if err := r.execute(ctx, args); err != nil {
			r.onError(r.output, err)
		}
	}
}

func (r *REPL) showCompletions(prefix string) {
	suggestions := r.completer.Complete(prefix)
	if len(suggestions) == 0 {
		fmt.Fprintf(r.output, "no commands match %q\n", strings.TrimSpace(prefix))
		return
	}
	for _, s := range suggestions {
		fmt.Fprintln(r.output, "  "+s)
	}
}
