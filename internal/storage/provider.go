// Package storage defines rooted file-system access for the project
// directory, with traversal protection and atomic writes.
package storage

// Provider is the interface for project file operations. Paths are always
// relative to the project root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
}
