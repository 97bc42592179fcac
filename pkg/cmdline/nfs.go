package cmdline

import (
	"errors"
	"strings"
)

var errNoRecordSource = errors.New("no record source configured")

// RecordSource provides the kernel's network auto-configuration record
// (/proc/net/pnp), one "key value" pair per line.
type RecordSource interface {
	BootRecord() (string, error)
}

// RecordString is a RecordSource backed by an in-memory record.
type RecordString string

func (r RecordString) BootRecord() (string, error) {
	return string(r), nil
}

// BootServer returns the value of the first bootserver line of the record.
func BootServer(record string) (string, bool) {
	for _, line := range strings.Split(record, "\n") {
		key, value, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		if key == "bootserver" {
			return value, true
		}
	}
	return "", false
}

// ResolveNFSRoot rewrites root, rootflags and rootfstype from nfsroot=.
// The server comes from the host part of nfsroot= when present, otherwise
// from the bootserver entry of src. A missing bootserver is not an error, the
// addr= option is then left empty.
func ResolveNFSRoot(cfg Config, src RecordSource) (Config, error) {
	if cfg.NFSRoot == nil {
		return cfg, ErrMissingNFSRoot
	}

	root, extra, hasExtra := strings.Cut(*cfg.NFSRoot, ",")
	flags := "nolock"
	if hasExtra {
		flags += "," + extra
	}
	flags += ",addr="

	if host, _, found := strings.Cut(root, ":"); found {
		flags += host
	} else {
		if src == nil {
			return cfg, &ResourceUnavailableError{Resource: "boot server record", Err: errNoRecordSource}
		}
		record, err := src.BootRecord()
		if err != nil {
			return cfg, err
		}
		if server, ok := BootServer(record); ok {
			root = server + ":" + root
			flags += server
		}
	}

	cfg.Root = ptr(root)
	cfg.RootFlags = ptr(flags)
	cfg.RootFSType = ptr(NFSType)
	return cfg, nil
}
