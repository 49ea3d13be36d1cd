// Package utils provides shared configuration loading and logging helpers used across commands.
package utils
