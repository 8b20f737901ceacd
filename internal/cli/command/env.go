package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/cmsadmin/internal/cli/apiclient"
	"github.com/yndnr/cmsadmin/internal/cli/assets"
	"github.com/yndnr/cmsadmin/internal/cli/config"
	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/output"
	"github.com/yndnr/cmsadmin/internal/cli/session"
	"github.com/yndnr/cmsadmin/internal/infra/buildinfo"
	"github.com/yndnr/cmsadmin/internal/infra/tlsroots"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
	"github.com/yndnr/cmsadmin/internal/telemetry/metric"
	"github.com/yndnr/cmsadmin/pkg/crypto/adaptive"
)

const (
	envKey   = "env"
	ownedKey = "env.owned"
)

var errNotLoggedIn = errors.New("not logged in; run 'cmsadmin login' first")

// Prompter asks the user for input.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	ReadSecret(prompt string) (string, error)
}

// EnvOptions overrides parts of the environment. Zero values select the
// production implementation.
type EnvOptions struct {
	Storage   session.Storage
	Transport http.RoundTripper
	Sink      notify.Sink
	Prompter  Prompter
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

// Env is everything a command needs. It is built once per process and
// shared by every command, including those run from the shell.
type Env struct {
	Config     *config.CLIConfig
	ConfigPath string

	Log      logger.Logger
	Metrics  *metric.Registry
	Sink     notify.Sink
	Printer  *output.Printer
	Prompter Prompter
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer

	// Set by Open.
	Store    *session.Store
	Client   *apiclient.Client
	Resolver *assets.Resolver

	storage   session.Storage
	transport http.RoundTripper
	nav       *switchNavigator

	openOnce sync.Once
	openErr  error

	mu          sync.Mutex
	output      config.OutputSection
	verifying   <-chan error
	interactive bool
}

// NewEnv prepares an environment over cfg. Nothing touches the network or
// the session directory until Open.
func NewEnv(cfg *config.CLIConfig, path string, opts EnvOptions) (*Env, error) {
	e := &Env{
		Config:     cfg,
		ConfigPath: path,
		Prompter:   opts.Prompter,
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		storage:    opts.Storage,
		transport:  opts.Transport,
		nav:        &switchNavigator{},
		output:     cfg.Output,
	}
	if e.Stdin == nil {
		e.Stdin = os.Stdin
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}

	e.Log = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: e.Stderr,
	})
	logger.SetDefault(e.Log)

	e.Metrics = metric.NewRegistry()

	sink := opts.Sink
	if sink == nil {
		sink = notify.NewTerminalSink(e.Stderr, cfg.Output.Color && isTerminal(e.Stderr))
	}
	e.Sink = notify.Counting(sink, e.Metrics)

	if e.Prompter == nil {
		e.Prompter = newTerminalPrompter(e.Stdin, e.Stderr)
	}

	if err := e.setOutput(cfg.Output.Format, cfg.Output.Wide); err != nil {
		return nil, err
	}
	return e, nil
}

// Open verifies the configuration, loads the persisted session and builds
// the API client. It runs once; later calls return the first result.
func (e *Env) Open(ctx context.Context) error {
	e.openOnce.Do(func() {
		e.openErr = e.open(ctx)
	})
	return e.openErr
}

func (e *Env) open(ctx context.Context) error {
	cfg := e.Config
	if err := config.Verify(cfg); err != nil {
		return err
	}

	storage := e.storage
	if storage == nil {
		var err error
		if storage, err = openStorage(cfg, e.Log); err != nil {
			return err
		}
	}

	e.Store = session.NewStore(storage,
		session.WithLogger(e.Log),
		session.WithClearObserver(e.Metrics),
	)
	if err := e.Metrics.Register(metric.NewSessionCollector(e.Store)); err != nil {
		e.Log.Debug("register session collector", "error", err)
	}

	tlsCfg, err := tlsroots.ClientConfig(cfg.API.CAFile)
	if err != nil {
		return err
	}
	e.Client, err = apiclient.New(apiclient.Options{
		BaseURL:   cfg.API.BaseURL,
		TLSConfig: tlsCfg,
		UserAgent: buildinfo.UserAgent(),
		Session:   e.Store,
		Sink:      e.Sink,
		Navigator: e.nav,
		Metrics:   e.Metrics,
		Logger:    e.Log.With("component", "apiclient"),
		Transport: e.transport,
	})
	if err != nil {
		return err
	}
	e.Resolver = assets.NewResolver(e.Client.BaseURL())

	if _, err := e.Store.Load(ctx); err != nil {
		return err
	}
	return nil
}

func openStorage(cfg *config.CLIConfig, log logger.Logger) (session.Storage, error) {
	db, err := session.OpenBadger(cfg.Session.Dir, log)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, fmt.Errorf("session store %s is in use by another cmsadmin process", cfg.Session.Dir)
		}
		return nil, err
	}
	if !cfg.Session.Encrypt {
		return db, nil
	}

	key, err := adaptive.LoadOrCreateKey(cfg.KeyPath())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("session key: %w", err)
	}
	cipher, err := adaptive.New(key)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	return session.NewEncryptedStorage(db, cipher), nil
}

// verifySession reloads the persisted session and revalidates it with the
// server without blocking. The channel yields the outcome; Close also waits
// for it.
func (e *Env) verifySession(ctx context.Context) <-chan error {
	found, done := e.Store.LoadAndVerify(ctx, e.Client.Verifier())
	if found {
		e.mu.Lock()
		e.verifying = done
		e.mu.Unlock()
	}
	return done
}

// Close waits for a pending verification, releases the session store and
// writes the metrics textfile when configured.
func (e *Env) Close() error {
	e.mu.Lock()
	verifying := e.verifying
	e.verifying = nil
	e.mu.Unlock()

	if verifying != nil {
		select {
		case <-verifying:
		case <-time.After(apiclient.RequestTimeout + time.Second):
		}
	}

	var errs []error
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	if path := e.Config.Metrics.File; path != "" {
		if err := e.Metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// setOutput rebuilds the printer for the given format.
func (e *Env) setOutput(format string, wide bool) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	e.Printer = &output.Printer{Out: e.Stdout, Format: f, Wide: wide}
	return nil
}

// applyOutputFlags lets a single invocation override the configured output.
func (e *Env) applyOutputFlags(c *cli.Context) error {
	e.mu.Lock()
	format, wide := e.output.Format, e.output.Wide
	e.mu.Unlock()
	if c.IsSet("output") {
		format = c.String("output")
	}
	if c.IsSet("wide") {
		wide = c.Bool("wide")
	}
	return e.setOutput(format, wide)
}

// reloadOutput replaces the output defaults used by later commands.
func (e *Env) reloadOutput(out config.OutputSection) error {
	if _, err := output.ParseFormat(out.Format); err != nil {
		return err
	}
	e.mu.Lock()
	e.output = out
	e.mu.Unlock()
	return nil
}

func (e *Env) setInteractive(v bool) {
	e.mu.Lock()
	e.interactive = v
	e.mu.Unlock()
}

func (e *Env) isInteractive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interactive
}

// decorate reports whether progress decorations may be drawn.
func (e *Env) decorate() bool {
	return !e.Printer.Structured() && isTerminal(e.Stderr)
}

func getEnv(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, errors.New("command environment is not initialized")
}

// connect returns the opened environment.
func connect(c *cli.Context) (*Env, error) {
	env, err := getEnv(c)
	if err != nil {
		return nil, err
	}
	if err := env.Open(c.Context); err != nil {
		return nil, err
	}
	return env, nil
}

// authed is connect for commands that need a signed-in user.
func authed(c *cli.Context) (*Env, error) {
	env, err := connect(c)
	if err != nil {
		return nil, err
	}
	if env.Store.Token() == "" {
		return nil, errNotLoggedIn
	}
	return env, nil
}

// switchNavigator forwards login navigation to the shell while one runs and
// otherwise remembers that a login is required.
type switchNavigator struct {
	mu      sync.Mutex
	target  apiclient.Navigator
	pending bool
}

func (n *switchNavigator) ToLogin() {
	n.mu.Lock()
	target := n.target
	if target == nil {
		n.pending = true
	}
	n.mu.Unlock()

	if target != nil {
		target.ToLogin()
	}
}

func (n *switchNavigator) set(target apiclient.Navigator) {
	n.mu.Lock()
	n.target = target
	n.mu.Unlock()
}

func (n *switchNavigator) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}

func (n *switchNavigator) reset() {
	n.mu.Lock()
	n.pending = false
	n.mu.Unlock()
}

// shownError marks an error the user has already been told about.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// Silent reports whether err has already been shown to the user, either by
// the API client or by a command, and should not be printed again.
func Silent(err error) bool {
	var s shownError
	return apiclient.IsNotified(err) || errors.As(err, &s)
}

// check turns a 2xx envelope with success false into a shown error.
func check[T any](env *Env, resp *model.Envelope[T]) error {
	if resp.Success {
		return nil
	}
	msg := resp.Message
	if msg == "" {
		msg = apiclient.GenericMessage
	}
	notify.Error(env.Sink, "%s", msg)
	return shownError{errors.New(msg)}
}

// terminalPrompter reads answers from stdin, hiding secrets on a TTY.
type terminalPrompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: in, r: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *terminalPrompter) ReadSecret(prompt string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ReadLine(prompt)
	}
	fd := int(f.Fd())
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
