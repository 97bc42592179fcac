package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kairos-io/immuroot/internal/constants"
	"github.com/kballard/go-shellquote"
)

// Settings are the knobs read from the immuroot env file.
type Settings struct {
	InitArgs     []string
	MountTimeout time.Duration
}

func ReadEnv(file string) (map[string]string, error) {
	return godotenv.Read(file)
}

// LoadSettings reads the env file. A missing file yields the defaults.
func LoadSettings(file string) (Settings, error) {
	s := Settings{MountTimeout: constants.DefaultMountTimeout}

	env, err := ReadEnv(file)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading %s: %w", file, err)
	}

	if v := env["IMMUROOT_INIT_ARGS"]; v != "" {
		args, err := shellquote.Split(v)
		if err != nil {
			return s, fmt.Errorf("parsing IMMUROOT_INIT_ARGS: %w", err)
		}
		s.InitArgs = args
	}
	if v := env["IMMUROOT_MOUNT_TIMEOUT"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("parsing IMMUROOT_MOUNT_TIMEOUT: %w", err)
		}
		s.MountTimeout = d
	}
	return s, nil
}
