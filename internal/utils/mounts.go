package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/containerd/containerd/mount"
	"github.com/deniswernert/go-fstab"
	"github.com/kairos-io/immuroot/internal/constants"
	"github.com/kairos-io/immuroot/pkg/cmdline"
	"github.com/twpayne/go-vfs/v4"
)

// ParseMount maps the tag forms of root= to the udev symlinks
// input: LABEL=FOO
// output: /dev/disk/by-label/FOO
func ParseMount(s string) string {
	switch {
	case strings.HasPrefix(s, "PARTUUID="):
		return fmt.Sprintf("/dev/disk/by-partuuid/%s", strings.TrimPrefix(s, "PARTUUID="))
	case strings.HasPrefix(s, "PARTLABEL="):
		return fmt.Sprintf("/dev/disk/by-partlabel/%s", strings.TrimPrefix(s, "PARTLABEL="))
	case strings.HasPrefix(s, "UUID="):
		return fmt.Sprintf("/dev/disk/by-uuid/%s", strings.TrimPrefix(s, "UUID="))
	case strings.HasPrefix(s, "LABEL="):
		return fmt.Sprintf("/dev/disk/by-label/%s", strings.TrimPrefix(s, "LABEL="))
	default:
		return s
	}
}

// CMDLineArg returns the values of every occurrence of key in the cmdline.
// Options without a value show up as an empty string.
func CMDLineArg(line, key string) []string {
	res := []string{}
	for _, o := range cmdline.Options(line) {
		if o.Key != key {
			continue
		}
		if o.Value == nil {
			res = append(res, "")
		} else {
			res = append(res, *o.Value)
		}
	}
	return res
}

// Filesystems returns the filesystems the kernel can mount from a block device,
// in the order the kernel lists them. This is what the kernel itself tries
// when rootfstype= is not given.
func Filesystems(fs vfs.FS) ([]string, error) {
	block, _, err := readFilesystems(fs)
	return block, err
}

// IsNodev reports whether the kernel lists t as a filesystem that does not
// need a block device, such as 9p, nfs or virtiofs.
func IsNodev(fs vfs.FS, t string) bool {
	_, nodev, err := readFilesystems(fs)
	if err != nil {
		return false
	}
	for _, n := range nodev {
		if n == t {
			return true
		}
	}
	return false
}

func readFilesystems(fs vfs.FS) (block, nodev []string, err error) {
	f, err := fs.Open(constants.FilesystemsPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch {
		case len(fields) == 1:
			block = append(block, fields[0])
		// nodev filesystems come as "nodev\tname"
		case len(fields) == 2 && fields[0] == "nodev":
			nodev = append(nodev, fields[1])
		}
	}
	return block, nodev, scanner.Err()
}

func CreateIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModePerm)
	}

	return nil
}

func MountToFstab(m mount.Mount) *fstab.Mount {
	opts := map[string]string{}
	for _, o := range m.Options {
		if key, value, found := strings.Cut(o, "="); found {
			opts[key] = value
		} else {
			opts[o] = ""
		}
	}
	return &fstab.Mount{
		Spec:    m.Source,
		VfsType: m.Type,
		MntOps:  opts,
		Freq:    0,
		PassNo:  0,
	}
}
