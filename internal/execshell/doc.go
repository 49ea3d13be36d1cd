// Package execshell executes git and GitHub CLI commands through a structured, observable runner.
package execshell
