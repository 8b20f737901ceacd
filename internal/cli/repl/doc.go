// Package repl implements the interactive shell of cmsadmin.
//
//   - repl.go: read/eval loop, prompts, forced re-login
//   - split.go: shell-style word splitting
//   - completer.go: command completion ("media ?" lists subcommands)
//   - history.go: history persisted to ~/.cmsadmin/history
//
// The loop knows nothing about the command tree; it is handed an Executor.
package repl
