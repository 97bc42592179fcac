// Package pnp reads the record the kernel leaves in /proc/net/pnp after
// configuring the network through DHCP or BOOTP (ip=dhcp).
package pnp

import (
	"github.com/kairos-io/immuroot/pkg/cmdline"
	"github.com/twpayne/go-vfs/v4"
)

// File is a cmdline.RecordSource reading the record from a file.
type File struct {
	FS   vfs.FS
	Path string
}

func (f File) BootRecord() (string, error) {
	data, err := f.FS.ReadFile(f.Path)
	if err != nil {
		return "", &cmdline.ResourceUnavailableError{Resource: f.Path, Err: err}
	}
	return string(data), nil
}
