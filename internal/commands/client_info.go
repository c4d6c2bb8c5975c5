package commands

import (
	"context"
	"os"

	"Go2NetWatch/internal/clientinfo"
	"Go2NetWatch/internal/render"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "client-info",
		Usage: "print the host name and the local and public IP addresses",
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
			resolver, err := clientinfo.NewResolver(cfg.ClientInfo)
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			info := resolver.Resolve(context.Background())
			if c.Bool("json") {
				return printJSON(info)
			}
			render.ClientInfo(os.Stdout, info, renderOptions(c))
			return nil
		},
	}
	bootstrapCommands(command)
}
