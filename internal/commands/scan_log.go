package commands

import (
	"os"

	"Go2NetWatch/internal/attacklog"
	"Go2NetWatch/internal/render"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:      "scan-log",
		Usage:     "report the attack types found in an attack log",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			colorFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			path := c.Args().Get(0)
			if path == "" {
				path = cfg.Monitor.AttackLogPath
			}

			attacks, err := attacklog.NewScanner(path).Scan()
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			if c.Bool("json") {
				return printJSON(attacks)
			}
			render.Attacks(os.Stdout, attacks, renderOptions(c))
			return nil
		},
	}
	bootstrapCommands(command)
}
