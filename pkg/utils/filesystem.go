// Package utils provides the process execution and filesystem seams used
// throughout kubestrap. The FileSystem interface abstracts the host
// filesystem so that tests can run against an in-memory afero backend.
package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/bitfield/script"
	"github.com/spf13/afero"
)

// FileSystem defines the filesystem operations kubestrap performs on the
// host: configuration drop-ins, generated manifests and exported
// credentials all go through it.
type FileSystem interface {
	// ReadFile reads the file at the given path and returns its contents.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to the file at the given path with the
	// specified permissions, creating or truncating it.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Stat returns the FileInfo for the file at the given path.
	Stat(path string) (os.FileInfo, error)

	// Open opens the file at the given path for reading.
	Open(path string) (afero.File, error)

	// OpenFile opens the file at the given path with the specified flags
	// and permissions.
	OpenFile(path string, flag int, perm os.FileMode) (afero.File, error)

	// Remove deletes the file at the given path.
	Remove(path string) error

	// MkdirAll creates a directory along with any necessary parents.
	MkdirAll(path string, perm os.FileMode) error

	// Chmod changes the mode of the file at the given path.
	Chmod(path string, mode os.FileMode) error

	// Exists checks if the file or directory at the given path exists.
	Exists(path string) (bool, error)

	// DirExists checks if the directory at the given path exists.
	DirExists(path string) (bool, error)

	// Pipe creates a script.Pipe reading from the file at the given path.
	Pipe(path string) *script.Pipe

	// WritePipe writes the contents of the given script.Pipe to the file
	// at the specified path and returns the number of bytes written.
	WritePipe(path string, pipe *script.Pipe, flag int, perm os.FileMode) (int64, error)

	// Rename moves a file from oldPath to newPath.
	Rename(oldPath, newPath string) error
}

type aferoFS struct {
	fs afero.Fs
}

// FS is the global FileSystem instance used throughout the application.
// It defaults to the real filesystem but can be swapped for testing.
var FS FileSystem = &aferoFS{fs: afero.NewOsFs()}

func (a *aferoFS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(a.fs, path)
}

func (a *aferoFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(a.fs, path, data, perm)
}

func (a *aferoFS) Stat(path string) (os.FileInfo, error) {
	return a.fs.Stat(path)
}

func (a *aferoFS) Open(path string) (afero.File, error) {
	return a.fs.Open(path)
}

func (a *aferoFS) OpenFile(path string, flag int, perm os.FileMode) (afero.File, error) {
	return a.fs.OpenFile(path, flag, perm)
}

func (a *aferoFS) Remove(path string) error {
	return a.fs.Remove(path)
}

func (a *aferoFS) MkdirAll(path string, perm os.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) Chmod(path string, mode os.FileMode) error {
	return a.fs.Chmod(path, mode)
}

func (a *aferoFS) Exists(path string) (bool, error) {
	return afero.Exists(a.fs, path)
}

func (a *aferoFS) DirExists(path string) (bool, error) {
	return afero.DirExists(a.fs, path)
}

func (a *aferoFS) Pipe(path string) *script.Pipe {
	result := script.NewPipe()
	file, err := a.Open(path)
	if err != nil {
		return result.WithError(fmt.Errorf("while opening %s: %w", path, err))
	}

	return result.WithReader(file)
}

func (a *aferoFS) WritePipe(
	path string,
	p *script.Pipe,
	flag int,
	perm os.FileMode,
) (int64, error) {
	if p.Error() != nil {
		return 0, p.Error()
	}
	out, err := a.OpenFile(path, flag, perm)
	if err != nil {
		p.SetError(err)
		return 0, err
	}
	defer func() {
		err = out.Close()
	}()

	wrote, err := io.Copy(out, p)
	if err != nil {
		p.SetError(err)
	}
	return wrote, p.Error()
}

func (a *aferoFS) Rename(oldPath, newPath string) error {
	return a.fs.Rename(oldPath, newPath)
}

// For tests.
func NewMemMapFS() FileSystem {
	return &aferoFS{fs: afero.NewMemMapFs()}
}
