package commands

import (
	"os"
	"os/signal"
	"syscall"

	"Go2NetWatch/internal/engine/manager"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "monitor",
		Usage: "sample continuously and serve the API until interrupted",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			mgr, err := manager.NewManager(cfg)
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			if err := mgr.Start(); err != nil {
				mgr.Stop()
				return cli.NewExitError(err.Error(), -1)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit
			log.WithField("signal", sig.String()).Info("Shutting down")

			mgr.Stop()
			return nil
		},
	}
	bootstrapCommands(command)
}
