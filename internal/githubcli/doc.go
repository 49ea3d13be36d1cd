// Package githubcli wraps GitHub CLI invocations for pull request management.
package githubcli
