package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kairos-io/immuroot/internal/constants"
	"github.com/kairos-io/immuroot/internal/utils"
	"github.com/kairos-io/immuroot/internal/version"
	"github.com/kairos-io/immuroot/pkg/cmdline"
	"github.com/kairos-io/immuroot/pkg/pnp"
	"github.com/kairos-io/immuroot/pkg/state"
	"github.com/kballard/go-shellquote"
	"github.com/spectrocloud-labs/herd"
	"github.com/twpayne/go-vfs/v4"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// newState reads the cmdline and env file named by the flags and returns the
// state describing the root to mount.
func newState(c *cli.Context) (*state.State, utils.Settings, error) {
	fs := vfs.OSFS

	data, err := fs.ReadFile(c.String("cmdline"))
	if err != nil {
		return nil, utils.Settings{}, &cmdline.ResourceUnavailableError{Resource: c.String("cmdline"), Err: err}
	}
	line := string(data)

	utils.SetLogger(c.Bool("debug") || len(utils.CMDLineArg(line, "rd.immuroot.debug")) > 0)
	utils.Log.Debug().Str("content", line).Msg("cmdline")

	settings, err := utils.LoadSettings(c.String("env-file"))
	if err != nil {
		return nil, settings, err
	}

	cfg, err := cmdline.Parse(line, pnp.File{FS: fs, Path: c.String("pnp")})
	if err != nil {
		return nil, settings, fmt.Errorf("parsing cmdline: %w", err)
	}

	return &state.State{
		Config:       cfg,
		Rootdir:      c.String("sysroot"),
		FS:           fs,
		MountTimeout: settings.MountTimeout,
	}, settings, nil
}

func main() {
	app := cli.NewApp()
	app.Name = "immuroot"
	app.Usage = "mount the root filesystem described by the kernel cmdline and start init"
	app.Version = version.GetVersion()
	app.Authors = []*cli.Author{{Name: "Kairos authors"}}
	app.Copyright = "kairos authors"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "dry-run",
			EnvVars: []string{"IMMUROOT_DRY_RUN"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			EnvVars: []string{"IMMUROOT_DEBUG"},
		},
		&cli.StringFlag{
			Name:    "cmdline",
			Value:   constants.CmdlinePath,
			EnvVars: []string{"IMMUROOT_CMDLINE"},
		},
		&cli.StringFlag{
			Name:    "pnp",
			Value:   constants.PnpPath,
			EnvVars: []string{"IMMUROOT_PNP"},
		},
		&cli.StringFlag{
			Name:    "sysroot",
			Value:   constants.Sysroot,
			EnvVars: []string{"IMMUROOT_SYSROOT"},
		},
		&cli.StringFlag{
			Name:    "env-file",
			Value:   constants.EnvFile,
			EnvVars: []string{"IMMUROOT_ENV_FILE"},
		},
	}
	app.Action = func(c *cli.Context) error {
		s, settings, err := newState(c)
		if err != nil {
			return err
		}

		v := version.Get()
		utils.Log.Info().Str("commit", v.GitCommit).Str("compiled with", v.GoVersion).Str("version", v.Version).Msg("Immuroot")

		g := herd.DAG(herd.EnableInit)
		if err := s.Register(g); err != nil {
			return err
		}
		utils.Log.Info().Msg(s.WriteDAG(g))

		initPath := s.Config.InitPath()
		utils.Log.Info().Str("init", shellquote.Join(append([]string{initPath}, settings.InitArgs...)...)).Msg("init command")

		// Once we print the dag we can exit already
		if c.Bool("dry-run") {
			return nil
		}

		err = g.Run(context.Background())
		utils.Log.Info().Msg(s.WriteDAG(g))
		if err != nil {
			return err
		}
		return utils.SwitchRoot(s.Rootdir, initPath, settings.InitArgs)
	}
	app.Commands = []*cli.Command{
		{
			Name:  "parse",
			Usage: "print the root configuration resolved from the cmdline",
			Action: func(c *cli.Context) error {
				s, _, err := newState(c)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(s.Summary())
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			},
		},
		{
			Name:  "version",
			Usage: "version",
			Action: func(c *cli.Context) error {
				out, err := yaml.Marshal(version.Get())
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
