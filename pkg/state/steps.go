package state

import (
	"context"

	cnst "github.com/kairos-io/immuroot/internal/constants"
	"github.com/kairos-io/immuroot/pkg/op"
	"github.com/spectrocloud-labs/herd"
)

// MountRootDagStep adds the step mounting the root described by the cmdline on Rootdir.
// It is fatal: without a root there is nothing to switch to.
func (s *State) MountRootDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpMountRoot, append(opts, herd.FatalOp, herd.WithCallback(
		func(ctx context.Context) error {
			ops, err := op.RootMounts(s.Config, s.FS, s.Rootdir)
			if err != nil {
				return err
			}
			fstab, err := op.MountFirst(ctx, ops, s.MountTimeout)
			for _, f := range fstab {
				s.AddToFstab(f)
			}
			return err
		},
	))...)
}

// WriteFstabDagStep adds the step recording the mounts in the new root's fstab.
func (s *State) WriteFstabDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpWriteFstab, append(opts, herd.WithCallback(s.WriteFstab()))...)
}

// Register adds every step needed to bring up the root filesystem.
func (s *State) Register(g *herd.Graph) error {
	if err := s.MountRootDagStep(g); err != nil {
		s.LogIfError(err, "mount root")
		return err
	}
	err := s.WriteFstabDagStep(g, herd.WithDeps(cnst.OpMountRoot))
	s.LogIfError(err, "write fstab")
	return err
}
