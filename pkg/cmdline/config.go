package cmdline

import (
	"bytes"

	"golang.org/x/sys/unix"
)

const (
	// DefaultInit is executed as PID 1 unless init= says otherwise.
	DefaultInit = "/sbin/init"
	// NFSDevice is the root= value selecting a network root.
	NFSDevice = "/dev/nfs"
	// NFSType is the filesystem type of a network root.
	NFSType = "nfs"
)

// Config is the root mount configuration described by the kernel cmdline.
type Config struct {
	Root        *string // device path or host:export for nfs
	RootFSType  *string
	RootFlags   *string // raw mount data, e.g. trans=virtio
	RootFSFlags uintptr // mount flags, only unix.MS_RDONLY is ever touched
	NFSRoot     *string // nfsroot= value, kept verbatim
	Init        []byte  // NUL terminated
}

// NewConfig returns the configuration the kernel assumes when nothing is given
// on the cmdline: read-only root and /sbin/init.
func NewConfig() Config {
	return Config{
		RootFSFlags: unix.MS_RDONLY,
		Init:        append([]byte(DefaultInit), 0),
	}
}

// ReadOnly reports whether the root should be mounted read-only.
func (c Config) ReadOnly() bool {
	return c.RootFSFlags&unix.MS_RDONLY != 0
}

// InitPath returns Init without its NUL terminator.
func (c Config) InitPath() string {
	return string(bytes.TrimSuffix(c.Init, []byte{0}))
}

// IsNFS reports whether the root has to be resolved as an nfs export.
func (c Config) IsNFS() bool {
	return value(c.Root) == NFSDevice || value(c.RootFSType) == NFSType
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}
