// Package main provides the entry point for cmsadmin.
//
// cmsadmin is the command-line administration client for the CMS backend,
// supporting both single-command mode and an interactive shell.
package main
