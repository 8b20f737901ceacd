package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/apiclient"
	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/session"
)

// LoginCommand signs in and stores the session.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to the CMS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted without echo when omitted)",
				EnvVars: []string{"CMSADMIN_PASSWORD"},
			},
		},
		Action: authLogin,
	}
}

// RegisterCommand creates an account and signs in.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted without echo when omitted)",
				EnvVars: []string{"CMSADMIN_PASSWORD"},
			},
		},
		Action: authRegister,
	}
}

// LogoutCommand ends the session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the stored session",
		Action: authLogout,
	}
}

// WhoamiCommand shows the signed-in user.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "remote",
				Aliases: []string{"r"},
				Usage:   "Refetch the profile from the server",
			},
		},
		Action: authWhoami,
	}
}

// VerifyCommand checks the stored token against the server.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Check that the stored session is still valid",
		Action: authVerify,
	}
}

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage your own account",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Action: authWhoami,
			},
			{
				Name:  "update",
				Usage: "Update your name, email or picture",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New display name"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "picture", Usage: "Profile picture URL"},
				},
				Action: profileUpdate,
			},
			{
				Name:  "password",
				Usage: "Change your password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current-password", Usage: "Current password (prompted when omitted)"},
					&cli.StringFlag{Name: "new-password", Usage: "New password (prompted when omitted)"},
				},
				Action: profilePassword,
			},
		},
	}
}

func authLogin(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}
	return login(c.Context, env, env.Prompter, c.String("email"), c.String("password"))
}

// login runs the sign-in flow. Missing credentials are asked for through p.
func login(ctx context.Context, env *Env, p Prompter, email, password string) error {
	email, err := ask(p.ReadLine, "Email: ", email)
	if err != nil {
		return err
	}
	if email == "" {
		return errors.New("email required")
	}
	if password == "" {
		if password, err = p.ReadSecret("Password: "); err != nil {
			return err
		}
	}
	if password == "" {
		return errors.New("password required")
	}

	resp, err := env.Client.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	if err := startSession(ctx, env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Welcome back, %s", displayName(env.Store.User()))
	return nil
}

func authRegister(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}
	p := env.Prompter

	name, err := ask(p.ReadLine, "Name: ", c.String("name"))
	if err != nil {
		return err
	}
	email, err := ask(p.ReadLine, "Email: ", c.String("email"))
	if err != nil {
		return err
	}
	if name == "" || email == "" {
		return errors.New("name and email required")
	}

	password := c.String("password")
	if password == "" {
		if password, err = newPassword(p, "Password: "); err != nil {
			return err
		}
	}

	resp, err := env.Client.Register(c.Context, model.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	if err := startSession(c.Context, env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Account created. Signed in as %s", displayName(env.Store.User()))
	return nil
}

func startSession(ctx context.Context, env *Env, resp *model.Envelope[model.AuthData]) error {
	if err := check(env, resp); err != nil {
		return err
	}
	if resp.Data.Token == "" {
		notify.Error(env.Sink, "%s", apiclient.GenericMessage)
		return shownError{errors.New("sign-in response carried no token")}
	}
	if err := env.Store.Set(ctx, resp.Data.Token, resp.Data.User); err != nil {
		return err
	}
	env.nav.reset()
	return nil
}

func authLogout(c *cli.Context) error {
	env, err := connect(c)
	if err != nil {
		return err
	}
	if env.Store.Token() == "" {
		notify.Info(env.Sink, "Not logged in")
		return nil
	}

	// The server side is best effort; a failure there was already reported.
	if _, err := env.Client.Logout(c.Context); err != nil {
		env.Log.Debug("server logout failed", "error", err)
	}
	if err := env.Store.Clear(c.Context); err != nil {
		return err
	}
	env.nav.reset()
	notify.Success(env.Sink, "Logged out")
	return nil
}

func authWhoami(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	if c.Bool("remote") {
		resp, err := env.Client.GetProfile(c.Context)
		if err != nil {
			return err
		}
		if err := check(env, resp); err != nil {
			return err
		}
		if err := env.Store.Update(c.Context, resp.Data.User); err != nil {
			return err
		}
	} else if err := <-env.verifySession(c.Context); err != nil {
		if errors.Is(err, session.ErrRejected) {
			return rejectSession(env, err)
		}
		return err
	}

	user := env.Store.User()
	if user == nil {
		return errNotLoggedIn
	}
	if err := env.Printer.Print(user); err != nil {
		return err
	}
	if exp, ok := env.Store.Expiry(); ok && !env.Printer.Structured() {
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, expiryLine(exp, time.Now()))
	}
	return nil
}

func expiryLine(exp, now time.Time) string {
	when := exp.Local().Format("2006-01-02 15:04")
	if !exp.After(now) {
		return fmt.Sprintf("Token expired %s (%s)", humanize.RelTime(exp, now, "ago", "from now"), when)
	}
	return fmt.Sprintf("Token expires %s (%s)", humanize.RelTime(exp, now, "ago", "from now"), when)
}

func authVerify(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	err = env.Store.Revalidate(c.Context, env.Client.Verifier())
	switch {
	case err == nil:
		notify.Success(env.Sink, "Session is valid for %s", displayName(env.Store.User()))
		return nil
	case errors.Is(err, session.ErrRejected):
		return rejectSession(env, err)
	default:
		return err
	}
}

// rejectSession reports a session the server refused. The store has
// already been cleared.
func rejectSession(env *Env, err error) error {
	notify.Error(env.Sink, "Session is no longer valid. Please log in again.")
	env.nav.ToLogin()
	return shownError{err}
}

func profileUpdate(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}

	upd := model.ProfileUpdate{
		Name:           c.String("name"),
		Email:          c.String("email"),
		ProfilePicture: c.String("picture"),
	}
	if upd == (model.ProfileUpdate{}) {
		return errors.New("nothing to update; use --name, --email or --picture")
	}

	resp, err := env.Client.UpdateProfile(c.Context, upd)
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	if err := env.Store.Update(c.Context, resp.Data.User); err != nil {
		return err
	}
	notify.Success(env.Sink, "Profile updated")
	return env.Printer.Print(resp.Data.User)
}

func profilePassword(c *cli.Context) error {
	env, err := authed(c)
	if err != nil {
		return err
	}
	p := env.Prompter

	current := c.String("current-password")
	if current == "" {
		if current, err = p.ReadSecret("Current password: "); err != nil {
			return err
		}
	}
	next := c.String("new-password")
	if next == "" {
		if next, err = newPassword(p, "New password: "); err != nil {
			return err
		}
	}
	if current == "" || next == "" {
		return errors.New("both current and new password are required")
	}

	resp, err := env.Client.ChangePassword(c.Context, model.PasswordChange{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return err
	}
	if err := check(env, resp); err != nil {
		return err
	}
	notify.Success(env.Sink, "Password changed")
	return nil
}

// ask returns value when set, otherwise the trimmed answer to prompt.
func ask(read func(string) (string, error), prompt, value string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	answer, err := read(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// newPassword prompts twice and requires both entries to match.
func newPassword(p Prompter, prompt string) (string, error) {
	first, err := p.ReadSecret(prompt)
	if err != nil {
		return "", err
	}
	second, err := p.ReadSecret("Repeat " + strings.ToLower(prompt[:1]) + prompt[1:])
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	if first == "" {
		return "", errors.New("password required")
	}
	return first, nil
}

func displayName(u *model.Profile) string {
	switch {
	case u == nil:
		return "unknown user"
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}
