package op

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/containerd/containerd/mount"
	"github.com/hashicorp/go-multierror"
	"github.com/kairos-io/immuroot/internal/constants"
	internalUtils "github.com/kairos-io/immuroot/internal/utils"
	"github.com/kairos-io/immuroot/pkg/cmdline"
	"github.com/kairos-io/immuroot/pkg/schema"
	"github.com/twpayne/go-vfs/v4"
)

const retryDelay = time.Second

// RootMounts returns the mount operations that can bring up the root described
// by cfg at target, one per filesystem type to try. Without rootfstype= every
// block filesystem known to the kernel is a candidate.
func RootMounts(cfg cmdline.Config, fs vfs.FS, target string) ([]MountOperation, error) {
	if cfg.Root == nil {
		return nil, errors.New("no root= given on the cmdline")
	}
	source := internalUtils.ParseMount(*cfg.Root)

	options := []string{"rw"}
	if cfg.ReadOnly() {
		options = []string{"ro"}
	}
	if cfg.RootFlags != nil {
		for _, o := range strings.Split(*cfg.RootFlags, ",") {
			if o != "" {
				options = append(options, o)
			}
		}
	}

	var types []string
	if cfg.RootFSType != nil {
		types = []string{*cfg.RootFSType}
	} else {
		fss, err := internalUtils.Filesystems(fs)
		if err != nil {
			return nil, fmt.Errorf("no rootfstype= given and the kernel filesystems cannot be listed: %w", err)
		}
		types = fss
	}

	var prepare func() error
	// Only block devices can show up late. A 9p or virtiofs root may still be
	// named /dev/something, it is a mount tag then, not a device node.
	if strings.HasPrefix(source, "/dev/") && (cfg.RootFSType == nil || !internalUtils.IsNodev(fs, *cfg.RootFSType)) {
		root := *cfg.Root
		prepare = func() error {
			_, err := fs.Stat(source)
			if err != nil && source != root {
				err = internalUtils.LinkByTag(fs, root, source, internalUtils.BlockDisks)
			}
			return err
		}
	}

	ops := make([]MountOperation, 0, len(types))
	for _, t := range types {
		m := mount.Mount{Type: t, Source: source, Options: options}
		tmpFstab := internalUtils.MountToFstab(m)
		tmpFstab.File = "/"
		ops = append(ops, MountOperation{
			FstabEntry:      *tmpFstab,
			MountOption:     m,
			Target:          target,
			PrepareCallback: prepare,
		})
	}
	return ops, nil
}

// MountFirst runs the candidate operations in order until one succeeds, and
// retries the whole list until timeout. It returns the fstab entry of the
// mount that succeeded.
func MountFirst(ctx context.Context, ops []MountOperation, timeout time.Duration) (schema.FsTabs, error) {
	var fstab schema.FsTabs
	if len(ops) == 0 {
		return fstab, errors.New("nothing to mount")
	}
	if err := internalUtils.CreateIfNotExists(ops[0].Target); err != nil {
		internalUtils.Log.Err(err).Str("where", ops[0].Target).Msg("Creating dir")
		return fstab, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := retry.Do(
		func() error {
			var errs *multierror.Error
			for _, o := range ops {
				err := o.Run()
				if err == nil || errors.Is(err, constants.ErrAlreadyMounted) {
					entry := o.FstabEntry
					fstab = append(fstab, &entry)
					return nil
				}
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", o.MountOption.Type, err))
			}
			return errs.ErrorOrNil()
		},
		retry.Context(ctx),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Attempts(uint(timeout/retryDelay)+1),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			internalUtils.Log.Debug().Uint("attempt", n).Err(err).Msg("root not mounted yet")
		}),
	)
	if err != nil {
		internalUtils.Log.Err(err).Msg("Mount timeout")
		return fstab, fmt.Errorf("timeout exhausted: %w", err)
	}
	internalUtils.Log.Info().Str("where", ops[0].Target).Msg("mount done")
	return fstab, nil
}
