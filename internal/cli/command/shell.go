package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/config"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/repl"
	"github.com/yndnr/cmsadmin/internal/infra/confloader"
	"github.com/yndnr/cmsadmin/internal/telemetry/logger"
)

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start an interactive session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}
	if env.isInteractive() {
		return errors.New("already in a shell")
	}

	historyFile := config.DefaultHistoryPath()
	if c.Bool("no-history") {
		historyFile = ""
	}

	r := repl.New(
		func(ctx context.Context, args []string) error {
			return runLine(ctx, env, args)
		},
		repl.WithIO(env.Stdin, env.Stdout),
		repl.WithPrompt(func() string { return shellPrompt(env) }),
		repl.WithLoginFlow(func(ctx context.Context, r *repl.REPL) error {
			return login(ctx, env, r, "", "")
		}),
		repl.WithCompleter(repl.NewCompleter(commandPaths("", Commands())...)),
		repl.WithHistory(repl.NewHistory(historyFile, repl.DefaultHistorySize)),
		repl.WithErrorHandler(func(w io.Writer, err error) {
			if !Silent(err) {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
		}),
		repl.WithLogger(env.Log.With("component", "repl")),
	)

	prompter := env.Prompter
	env.Prompter = r
	env.nav.set(r)
	env.setInteractive(true)
	defer func() {
		env.setInteractive(false)
		env.nav.set(nil)
		env.Prompter = prompter
	}()

	if stop := watchConfig(env); stop != nil {
		defer stop()
	}

	env.verifySession(c.Context)
	if env.Store.Token() == "" {
		fmt.Fprintln(env.Stdout, "Not logged in. Type 'login' to sign in.")
	}
	fmt.Fprintln(env.Stdout, "Type 'help' for commands, 'exit' to quit. End a line with ? to see completions.")

	return r.Run(c.Context)
}

// runLine executes one shell line as a fresh invocation sharing env.
func runLine(ctx context.Context, env *Env, args []string) error {
	if args[0] == "shell" || args[0] == "repl" {
		return errors.New("already in a shell")
	}
	app := App()
	app.Metadata[envKey] = env
	app.Writer = env.Stdout
	app.ErrWriter = env.Stderr
	return app.RunContext(ctx, append([]string{app.Name}, args...))
}

func shellPrompt(env *Env) string {
	if u := env.Store.User(); u != nil {
		return fmt.Sprintf("cmsadmin (%s)> ", u.Email)
	}
	return "cmsadmin (logged out)> "
}

// commandPaths lists every command path, e.g. "media upload".
func commandPaths(prefix string, cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		path := cmd.Name
		if prefix != "" {
			path = prefix + " " + cmd.Name
		}
		paths = append(paths, path)
		paths = append(paths, commandPaths(path, cmd.Subcommands)...)
	}
	return paths
}

// watchConfig re-applies output settings when the config file changes. It
// returns nil when the file cannot be watched.
func watchConfig(env *Env) func() {
	w, err := confloader.NewWatcher(env.Log)
	if err != nil {
		env.Log.Debug("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(env.ConfigPath); err != nil {
		env.Log.Debug("config file not watched", "path", env.ConfigPath, "error", err)
		w.Stop()
		return nil
	}

	w.OnChange(func(path string) {
		cfg, err := config.Load(path)
		if err == nil {
			err = env.reloadOutput(cfg.Output)
		}
		if err != nil {
			notify.Warning(env.Sink, "Config not reloaded: %v", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		env.Log.Info("configuration reloaded", "path", path)
	})
	w.StartAsync()
	return func() { w.Stop() }
}
