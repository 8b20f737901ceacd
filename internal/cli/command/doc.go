// Package command provides the cmsadmin command tree.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, environment setup and teardown
//   - env.go: the shared Env (config, session, API client, output)
//   - auth.go: login, register, logout, whoami, verify, profile
//   - dashboard.go, contact.go, media.go, user.go, notice.go: admin views
//   - config.go: configuration subcommand group
//   - system.go: version and metrics
//   - shell.go: interactive shell
//
// Commands parse flags, call the API client and print results through the
// configured printer. Failed API calls have already been reported by the
// client; commands return the error without printing it again.
package command
