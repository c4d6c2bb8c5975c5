package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/sink"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "subscribe",
		Usage: "print snapshots published on the NATS stream",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			sub, err := sink.NewSubscriber(cfg.NATSSettings())
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			defer sub.Close()

			asJSON := c.Bool("json")
			err = sub.Start(func(s model.MetricsSnapshot, score float64) {
				if asJSON {
					printJSON(struct {
						Snapshot     model.MetricsSnapshot `json:"snapshot"`
						AnomalyScore float64               `json:"anomaly_score"`
					}{s, score})
					return
				}
				fmt.Println(summaryLine(s, score))
			})
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	}
	bootstrapCommands(command)
}

func summaryLine(s model.MetricsSnapshot, score float64) string {
	attacks := "none"
	if s.HasAttacks() {
		attacks = fmt.Sprint(s.DetectedAttacks)
	}
	return fmt.Sprintf("%s monitor=%s cpu=%.1f%% mem=%.1f%% conns=%d new=%d vuln=%d traffic=%.1fB/s attacks=%s score=%.2f",
		s.Timestamp.Format(time.RFC3339), s.MonitorID, s.CPUPercent, s.MemoryPercent,
		s.TotalConnections, len(s.NewConnections), len(s.VulnerableConnections), s.TrafficRate, attacks, score)
}
