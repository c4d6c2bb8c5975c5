// Package commands defines the netwatch command line.
package commands

import (
	"os"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/logging"
	"Go2NetWatch/internal/render"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "configs/config.yaml"

var allCommands []cli.Command

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "load configuration from `FILE`",
		Value: "",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print JSON instead of tables",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: "colour output: auto, always or never",
		Value: "auto",
	}
)

// GlobalFlags are accepted before any command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{configFlag}
}

// Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

// bootstrapCommands adds commands to the list exported by Commands.
func bootstrapCommands(commands ...cli.Command) {
	allCommands = append(allCommands, commands...)
}

// configPath prefers the command's --config over the global one.
func configPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	if p := c.GlobalString("config"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath(c))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), -1)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		return nil, cli.NewExitError(err.Error(), -1)
	}
	return cfg, nil
}

func renderOptions(c *cli.Context) render.Options {
	if c.Bool("json") {
		return render.Options{}
	}
	return render.Options{Color: render.ResolveColor(c.String("color"))}
}

func printJSON(v interface{}) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	os.Stdout.Write(append(data, '\n'))
	return nil
}
