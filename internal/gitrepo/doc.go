// Package gitrepo provides repository-level git operations built on the execshell executor.
package gitrepo
