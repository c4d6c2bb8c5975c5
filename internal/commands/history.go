package commands

import (
	"context"
	"os"
	"strconv"
	"time"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"
	"Go2NetWatch/internal/query"
	"Go2NetWatch/internal/render"
	"Go2NetWatch/internal/snapshot"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "history",
		Usage: "print stored snapshots",
		Flags: []cli.Flag{
			configFlag,
			jsonFlag,
			colorFlag,
			cli.StringFlag{
				Name:  "file, f",
				Usage: "read the history from `FILE` instead of monitor.history_file",
			},
			cli.IntFlag{
				Name:  "limit, l",
				Usage: "show only the newest `N` snapshots (0 for all)",
				Value: 20,
			},
			cli.StringFlag{
				Name:  "source, s",
				Usage: "json or clickhouse",
				Value: "json",
			},
			cli.DurationFlag{
				Name:  "since",
				Usage: "clickhouse only: look back this far",
			},
			cli.BoolFlag{
				Name:  "attacks",
				Usage: "clickhouse only: summarize attack types instead of listing snapshots",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			switch c.String("source") {
			case "json":
				return historyFromFile(c, cfg)
			case "clickhouse":
				return historyFromClickHouse(c, cfg)
			default:
				return cli.NewExitError("unknown --source "+c.String("source"), -1)
			}
		},
	}
	bootstrapCommands(command)
}

func historyFromFile(c *cli.Context, cfg *config.Config) error {
	path := c.String("file")
	if path == "" {
		path = cfg.Monitor.HistoryFile
	}
	snaps, err := snapshot.LoadHistory(path)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if snaps == nil {
		return cli.NewExitError("No history found at "+path, -1)
	}
	snaps = newest(snaps, c.Int("limit"))

	if c.Bool("json") {
		return printJSON(snaps)
	}
	render.History(os.Stdout, snaps, cfg.Monitor.AnomalyThreshold, renderOptions(c))
	return nil
}

func historyFromClickHouse(c *cli.Context, cfg *config.Config) error {
	def, ok := cfg.EnabledWriter("clickhouse")
	if !ok {
		return cli.NewExitError("no enabled clickhouse writer in the configuration", -1)
	}
	q, err := query.NewClickHouseQuerier(def.ClickHouse)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	defer q.Close()

	req := query.Request{Limit: c.Int("limit")}
	if since := c.Duration("since"); since > 0 {
		req.Since = time.Now().Add(-since)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.Bool("attacks") {
		counts, err := q.AttackSummary(ctx, req)
		if err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
		if c.Bool("json") {
			return printJSON(counts)
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Attack", "Snapshots", "First Seen", "Last Seen"})
		for _, a := range counts {
			table.Append([]string{a.Attack, strconv.FormatUint(a.Snapshots, 10),
				a.FirstSeen.Format(time.RFC3339), a.LastSeen.Format(time.RFC3339)})
		}
		table.Render()
		return nil
	}

	rows, err := q.RecentSnapshots(ctx, req)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if c.Bool("json") {
		return printJSON(rows)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Monitor", "CPU %", "Mem %", "Conns", "Vuln", "Traffic B/s", "Score"})
	// rows come newest first
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		table.Append([]string{
			r.Timestamp.Format(time.RFC3339), r.MonitorID,
			strconv.FormatFloat(r.CPUPercent, 'f', 1, 64),
			strconv.FormatFloat(r.MemoryPercent, 'f', 1, 64),
			strconv.FormatUint(uint64(r.TotalConnections), 10),
			strconv.FormatUint(uint64(r.VulnerableConnections), 10),
			strconv.FormatFloat(r.TrafficRate, 'f', 1, 64),
			strconv.FormatFloat(r.AnomalyScore, 'f', 2, 64),
		})
	}
	table.Render()
	return nil
}

// newest keeps the last limit snapshots; limit <= 0 keeps all.
func newest(snaps []model.MetricsSnapshot, limit int) []model.MetricsSnapshot {
	if limit <= 0 || limit >= len(snaps) {
		return snaps
	}
	return snaps[len(snaps)-limit:]
}
