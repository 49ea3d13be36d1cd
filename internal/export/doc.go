// Package export downloads migration export datasets from the storage bucket and records their metadata.
package export
