package commands

import (
	"fmt"
	"os"

	"Go2NetWatch/internal/clientinfo"
	"Go2NetWatch/internal/inventory"
	"Go2NetWatch/internal/render"
	"Go2NetWatch/internal/sockets"
	"Go2NetWatch/internal/topology"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "topology",
		Usage: "print the host, interface and remote peer graph",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			cli.BoolFlag{
				Name:  "dot",
				Usage: "print Graphviz DOT",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			sampler, err := sockets.NewSampler(cfg.Monitor.ConnectionSources, cfg.Monitor.ProcRoot)
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			conns, err := sampler.ListActiveConnections()
			if err != nil {
				log.WithError(err).Warn("connection listing failed, graph has no remotes")
			}

			host := topology.Host{}
			if name, err := os.Hostname(); err == nil {
				host.Name = name
			}
			if ip, err := clientinfo.LocalIP("8.8.8.8:80"); err == nil {
				host.Address = ip
			}

			g := topology.Build(host, inventory.ListInterfaces(), conns)
			switch {
			case c.Bool("dot"):
				fmt.Print(topology.DOT(g))
			case c.Bool("json"):
				return printJSON(g)
			default:
				render.Topology(os.Stdout, g)
			}
			return nil
		},
	}
	bootstrapCommands(command)
}
