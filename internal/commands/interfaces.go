package commands

import (
	"os"

	"Go2NetWatch/internal/inventory"
	"Go2NetWatch/internal/render"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "interfaces",
		Usage: "list interfaces with an IPv4 address",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			colorFlag,
		},
		Action: func(c *cli.Context) error {
			if _, err := loadConfig(c); err != nil {
				return err
			}
			ifaces := inventory.ListInterfaces()
			if c.Bool("json") {
				return printJSON(ifaces)
			}
			render.Interfaces(os.Stdout, ifaces, renderOptions(c))
			return nil
		},
	}
	bootstrapCommands(command)
}
