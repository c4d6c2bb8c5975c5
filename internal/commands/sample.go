package commands

import (
	"fmt"
	"os"
	"time"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/monitor"
	"Go2NetWatch/internal/render"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "sample",
		Usage: "take one or more snapshots and print the last",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			colorFlag,
			cli.IntFlag{
				Name:  "count, n",
				Usage: "number of samples to take",
				Value: 2,
			},
			cli.DurationFlag{
				Name:  "interval, i",
				Usage: "pause between samples",
				Value: time.Second,
			},
			cli.BoolFlag{
				Name:  "connections",
				Usage: "also list every active connection",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			count := c.Int("count")
			if count < 1 {
				return cli.NewExitError("--count must be at least 1", -1)
			}

			mon, err := newMonitor(cfg)
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			snap := takeSamples(mon, count, c.Duration("interval"))
			status := anomaly.Evaluate(snap, cfg.Monitor.AnomalyThreshold)

			if c.Bool("json") {
				return printJSON(struct {
					Snapshot model.MetricsSnapshot `json:"snapshot"`
					Status   anomaly.Status        `json:"status"`
				}{snap, status})
			}

			render.Snapshot(os.Stdout, snap, status, renderOptions(c))
			if c.Bool("connections") {
				fmt.Println()
				render.Connections(os.Stdout, snap.Connections)
			}
			return nil
		},
	}
	bootstrapCommands(command)
}

func newMonitor(cfg *config.Config) (*monitor.Monitor, error) {
	return monitor.New(monitor.Options{
		MaxHistory: cfg.Monitor.MaxHistory,
		ProcRoot:   cfg.Monitor.ProcRoot,
		AttackLog:  cfg.Monitor.AttackLogPath,
		Sources:    cfg.Monitor.ConnectionSources,
	})
}

// takeSamples samples count times and returns the last snapshot. The
// traffic rate is only meaningful from the second sample on.
func takeSamples(agg model.Aggregator, count int, pause time.Duration) model.MetricsSnapshot {
	var snap model.MetricsSnapshot
	for i := 0; i < count; i++ {
		if i > 0 && pause > 0 {
			time.Sleep(pause)
		}
		snap = agg.Sample()
	}
	return snap
}
