/*
Copyright © 2022 SUSE LLC
Copyright © 2023 Kairos authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

// CheckInit makes sure init exists in newRoot before we commit to switching.
// Lstat, init is often an absolute symlink that only resolves inside newRoot.
func CheckInit(newRoot, init string) error {
	_, err := os.Lstat(filepath.Join(newRoot, init))
	return err
}

// SwitchRoot hands the system over to the root mounted at newRoot: the
// pseudo filesystems of the initramfs are moved into it, newRoot is moved onto
// / and init replaces the current process. It only returns on failure.
func SwitchRoot(newRoot, init string, args []string) error {
	if err := CheckInit(newRoot, init); err != nil {
		Log.Err(err).Str("init", init).Str("root", newRoot).Msg("init not found in new root")
		return err
	}

	for _, mnt := range []string{"/dev", "/proc", "/sys", "/run"} {
		if mounted, _ := mountinfo.Mounted(mnt); !mounted {
			continue
		}
		target := filepath.Join(newRoot, mnt)
		if err := CreateIfNotExists(target); err != nil {
			Log.Err(err).Str("what", target).Msg("Creating dir")
			return err
		}
		if err := unix.Mount(mnt, target, "", unix.MS_MOVE, ""); err != nil {
			Log.Err(err).Str("what", mnt).Str("where", target).Msg("Moving mount")
			return err
		}
	}

	// Change to new dir before running chroot!
	if err := unix.Chdir(newRoot); err != nil {
		Log.Err(err).Str("path", newRoot).Msg("Can't chdir")
		return err
	}
	if err := unix.Mount(newRoot, "/", "", unix.MS_MOVE, ""); err != nil {
		Log.Err(err).Str("path", newRoot).Msg("Can't move root")
		return err
	}
	if err := unix.Chroot("."); err != nil {
		Log.Err(err).Str("path", newRoot).Msg("Can't chroot")
		return err
	}
	if err := unix.Chdir("/"); err != nil {
		return err
	}

	Log.Info().Str("init", init).Strs("args", args).Msg("Executing init")
	err := unix.Exec(init, append([]string{init}, args...), os.Environ())
	return fmt.Errorf("executing %s: %w", init, err)
}
