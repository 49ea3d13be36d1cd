// Package objectstore fetches bucket objects and their metadata documents over HTTP.
package objectstore
