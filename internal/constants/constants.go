package constants

import (
	"errors"
	"time"
)

var ErrAlreadyMounted = errors.New("already mounted")

const (
	OpMountRoot  = "mount-root"
	OpWriteFstab = "write-fstab"

	CmdlinePath     = "/proc/cmdline"
	PnpPath         = "/proc/net/pnp"
	FilesystemsPath = "/proc/filesystems"
	EnvFile         = "/run/immuroot.env"
	LogDir          = "/run/immuroot"
	// FstabFile records the root mount for the booted system, /run survives the switch
	FstabFile       = "/run/immuroot/fstab"

	// Sysroot is where the root filesystem is mounted before switching to it
	Sysroot = "/sysroot"

	DefaultMountTimeout = 30 * time.Second
)
