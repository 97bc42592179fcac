package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deniswernert/go-fstab"
	cnst "github.com/kairos-io/immuroot/internal/constants"
	internalUtils "github.com/kairos-io/immuroot/internal/utils"
	"github.com/kairos-io/immuroot/pkg/cmdline"
	"github.com/kairos-io/immuroot/pkg/schema"
	"github.com/spectrocloud-labs/herd"
	"github.com/twpayne/go-vfs/v4"
)

type State struct {
	Config       cmdline.Config
	Rootdir      string        // where to mount the root filesystem e.g. /sysroot
	FS           vfs.FS        // used to read kernel lists such as /proc/filesystems
	MountTimeout time.Duration // how long to wait for the root device
	FstabFile    string        // defaults to constants.FstabFile, never the new root's own fstab
	fstabs       []*fstab.Mount
}

// Fstabs returns the entries collected by the mount steps so far.
func (s *State) Fstabs() schema.FsTabs {
	return s.fstabs
}

// WriteFstab writes the collected entries to FstabFile, replacing what a
// previous run left there. The root may be read-only, so the file lives
// under /run and not in the new root.
func (s *State) WriteFstab() func(context.Context) error {
	return func(ctx context.Context) error {
		fstabFile := s.FstabFile
		if fstabFile == "" {
			fstabFile = cnst.FstabFile
		}
		if err := internalUtils.CreateIfNotExists(filepath.Dir(fstabFile)); err != nil {
			return err
		}
		// Create the file first, override if something is there
		f, err := os.Create(fstabFile)
		if err != nil {
			return err
		}
		_ = f.Close()
		for _, fst := range s.fstabs {
			internalUtils.Log.Debug().Str("what", fst.String()).Msg("Adding line to fstab")
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				f, err := os.OpenFile(fstabFile,
					os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err != nil {
					return err
				}
				if _, err := f.WriteString(fmt.Sprintf("%s\n", fst.String())); err != nil {
					_ = f.Close()
					return err
				}
				_ = f.Close()
			}
		}
		return nil
	}
}

// WriteDAG writes the dag.
func (s *State) WriteDAG(g *herd.Graph) (out string) {
	for i, layer := range g.Analyze() {
		out += fmt.Sprintf("%d.\n", i+1)
		for _, op := range layer {
			if op.Error != nil {
				out += fmt.Sprintf(" <%s> (error: %s) (background: %t) (weak: %t)\n", op.Name, op.Error.Error(), op.Background, op.WeakDeps)
			} else {
				out += fmt.Sprintf(" <%s> (background: %t) (weak: %t)\n", op.Name, op.Background, op.WeakDeps)
			}
		}
	}
	return
}

// LogIfError will log if there is an error with the given context as message
// Context can be empty.
func (s *State) LogIfError(e error, msgContext string) {
	if e != nil {
		internalUtils.Log.Err(e).Msg(msgContext)
	}
}

// AddToFstab will try to add an entry to the fstab list
// Will check if the entry exists before adding it to avoid duplicates.
func (s *State) AddToFstab(tmpFstab *fstab.Mount) {
	for _, f := range s.fstabs {
		if f.Spec == tmpFstab.Spec {
			internalUtils.Log.Debug().Interface("existing", f).Interface("duplicated", tmpFstab).Msg("Duplicated fstab entry found, not adding")
			return
		}
	}
	s.fstabs = append(s.fstabs, tmpFstab)
}

// Summary returns the printable form of the parsed configuration.
func (s *State) Summary() schema.RootConfig {
	c := schema.RootConfig{
		ReadOnly: s.Config.ReadOnly(),
		Init:     s.Config.InitPath(),
	}
	if s.Config.Root != nil {
		c.Root = *s.Config.Root
	}
	if s.Config.RootFSType != nil {
		c.RootFSType = *s.Config.RootFSType
	}
	if s.Config.RootFlags != nil {
		c.RootFlags = *s.Config.RootFlags
	}
	if s.Config.NFSRoot != nil {
		c.NFSRoot = *s.Config.NFSRoot
	}
	return c
}
