// Command aegctl is the operator tool for the exam portal: it explains route
// guard decisions and checks backend reachability.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/cache"
	"github.com/SAP-F-2025/exam-portal/internal/config"
	"github.com/SAP-F-2025/exam-portal/internal/guard"
	"github.com/SAP-F-2025/exam-portal/pkg"
)

const usage = `usage: aegctl <command> [flags]

commands:
  guard <path> [--role ROLE] [--head 0|1]   show the route guard decision
  routes                                    show the dashboard root of each role
  ping [--backend URL]                      check that the backend answers
  flush-names [--redis URL]                 drop every cached subject and topic name
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "guard":
		err = guardCmd(args[1:], stdout)
	case "routes":
		routesCmd(stdout)
	case "ping":
		err = pingCmd(args[1:], stdout)
	case "flush-names":
		err = flushNamesCmd(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func guardCmd(args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("guard", pflag.ContinueOnError)
	role := fs.String("role", "", "value of the aeg_role cookie")
	head := fs.String("head", "", "value of the aeg_head cookie")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("guard takes exactly one path")
	}

	path, rawQuery, _ := strings.Cut(fs.Arg(0), "?")
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must start with /: %q", path)
	}

	d := guard.Evaluate(path, rawQuery, *role, *head)

	if d.Action == guard.Redirect {
		color.New(color.FgYellow, color.Bold).Fprintf(w, "REDIRECT %s\n", d.Location)
	} else {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "PASS")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Action", d.Action.String()})
	table.Append([]string{"Location", d.Location})
	table.Append([]string{"Allowed root", d.Root})
	table.Append([]string{"Reason", string(d.Reason)})
	table.Append([]string{guard.MarkerHeader, guard.MarkerHeaderValue})
	table.Render()
	return nil
}

func routesCmd(w io.Writer) {
	color.New(color.FgCyan).Fprintln(w, "Dashboard roots")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"aeg_role", "aeg_head", "Allowed root"})
	for _, row := range [][2]string{
		{"ADMIN", ""},
		{"TEACHER", "0"},
		{"TEACHER", "1"},
		{"STUDENT", ""},
		{"(any other)", ""},
	} {
		root, _ := guard.AllowedRoot(row[0], row[1])
		head := row[1]
		if head == "" {
			head = "-"
		}
		table.Append([]string{row[0], head, root})
	}
	table.Append([]string{"(none)", "-", guard.LoginPath})
	table.Render()
}

func pingCmd(args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("ping", pflag.ContinueOnError)
	backend := fs.String("backend", "", "backend base URL (defaults to BACKEND_URL)")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *backend == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		*backend = cfg.BackendURL
	}

	client := api.NewClient(*backend, *timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	status, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", *backend, err)
	}
	color.New(color.FgGreen).Fprintf(w, "%s OK (HTTP %d) in %s\n", *backend, status, time.Since(start).Round(time.Millisecond))
	return nil
}

func flushNamesCmd(args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("flush-names", pflag.ContinueOnError)
	redisURL := fs.String("redis", "", "redis URL (defaults to REDIS_URL)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := &config.Config{RedisURL: *redisURL}
	if cfg.RedisURL == "" {
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cfg.RedisURL == "" {
		return fmt.Errorf("no redis configured")
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := cache.InvalidateAllNames(context.Background(), cache.NewCacheManager(client, 0)); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(w, "Name cache flushed")
	return nil
}
