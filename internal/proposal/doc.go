// Package proposal renders the migration pull request body and drives branch, commit, and pull request updates.
package proposal
