package main

import (
	"os"

	"Go2NetWatch/internal/commands"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "netwatch"
	app.Usage = "Watch host connections, resources and attack activity."
	app.Version = Version

	app.Flags = commands.GlobalFlags()
	app.Commands = commands.Commands()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
