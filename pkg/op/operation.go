package op

import (
	"github.com/containerd/containerd/mount"
	"github.com/deniswernert/go-fstab"
	"github.com/kairos-io/immuroot/internal/constants"
	internalUtils "github.com/kairos-io/immuroot/internal/utils"
	"github.com/moby/sys/mountinfo"
)

type MountOperation struct {
	FstabEntry      fstab.Mount
	MountOption     mount.Mount
	Target          string
	PrepareCallback func() error
}

func (m MountOperation) Run() error {
	// Add context to sublogger
	l := internalUtils.Log.With().Str("what", m.MountOption.Source).Str("where", m.Target).Str("type", m.MountOption.Type).Strs("options", m.MountOption.Options).Logger()

	if m.PrepareCallback != nil {
		if err := m.PrepareCallback(); err != nil {
			l.Warn().Err(err).Msg("executing mount callback")
			return err
		}
	}
	mounted, err := mountinfo.Mounted(m.Target)
	if err != nil {
		l.Warn().Err(err).Msg("checking mount status")
		return err
	}
	if mounted {
		l.Debug().Msg("Already mounted")
		return constants.ErrAlreadyMounted
	}
	l.Debug().Msg("mount ready")
	return mount.All([]mount.Mount{m.MountOption}, m.Target)
}
