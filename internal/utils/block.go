package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/block"
	"github.com/twpayne/go-vfs/v4"
)

// BlockDisks lists the disks of the system with their partitions.
func BlockDisks() ([]*block.Disk, error) {
	info, err := ghw.Block()
	if err != nil {
		return nil, err
	}
	return info.Disks, nil
}

// FindPartition returns the device node of the partition matching a
// LABEL=, PARTLABEL= or PARTUUID= tag.
func FindPartition(disks []*block.Disk, tag string) (string, bool) {
	key, value, found := strings.Cut(tag, "=")
	if !found || value == "" {
		return "", false
	}
	for _, d := range disks {
		for _, p := range d.Partitions {
			var match bool
			switch key {
			case "LABEL":
				match = p.FilesystemLabel == value
			case "PARTLABEL":
				match = p.Label == value
			case "PARTUUID":
				match = strings.EqualFold(p.UUID, value)
			}
			if match {
				return filepath.Join("/dev", p.Name), true
			}
		}
	}
	return "", false
}

// LinkByTag creates link, the /dev/disk/by-* path of tag, pointing to the
// partition found by lookup. It stands in for udev when it did not create
// the link itself.
func LinkByTag(fs vfs.FS, tag, link string, lookup func() ([]*block.Disk, error)) error {
	disks, err := lookup()
	if err != nil {
		return fmt.Errorf("listing block devices: %w", err)
	}
	dev, ok := FindPartition(disks, tag)
	if !ok {
		return fmt.Errorf("no partition found for %s", tag)
	}
	if err := vfs.MkdirAll(fs, filepath.Dir(link), 0o755); err != nil {
		return err
	}
	Log.Debug().Str("tag", tag).Str("device", dev).Str("link", link).Msg("Linking tagged device")
	return fs.Symlink(dev, link)
}
