package schema

import "github.com/deniswernert/go-fstab"

type FsTabs []*fstab.Mount

// RootConfig is the printable form of the parsed cmdline configuration.
type RootConfig struct {
	Root       string `yaml:"root,omitempty"`
	RootFSType string `yaml:"rootfstype,omitempty"`
	RootFlags  string `yaml:"rootflags,omitempty"`
	ReadOnly   bool   `yaml:"readonly"`
	NFSRoot    string `yaml:"nfsroot,omitempty"`
	Init       string `yaml:"init"`
}
