// Package cli assembles the migration-sync command-line application.
package cli
