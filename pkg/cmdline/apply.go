package cmdline

import (
	"golang.org/x/sys/unix"
)

func requireValue(opt Option) (string, error) {
	if opt.Value == nil {
		return "", &MissingArgumentError{Key: opt.Key}
	}
	return *opt.Value, nil
}

// Apply returns cfg updated with a single option. Options this package does
// not know about leave cfg untouched, the cmdline carries plenty of those.
func Apply(cfg Config, opt Option) (Config, error) {
	switch opt.Key {
	case "root", "rootfstype", "rootflags", "nfsroot", "init":
		v, err := requireValue(opt)
		if err != nil {
			return cfg, err
		}
		switch opt.Key {
		case "root":
			cfg.Root = ptr(v)
		case "rootfstype":
			cfg.RootFSType = ptr(v)
		case "rootflags":
			cfg.RootFlags = ptr(v)
		case "nfsroot":
			cfg.NFSRoot = ptr(v)
		case "init":
			b, err := unix.ByteSliceFromString(v)
			if err != nil {
				return cfg, &InvalidValueError{Key: opt.Key, Reason: "contains a NUL byte"}
			}
			cfg.Init = b
		}
	case "ro":
		cfg.RootFSFlags |= unix.MS_RDONLY
	case "rw":
		cfg.RootFSFlags &^= unix.MS_RDONLY
	}
	return cfg, nil
}
