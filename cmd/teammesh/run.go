package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/teammesh/engine"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/topology"
)

var (
	runBudget  int
	runTrace   bool
	runQuiet   bool
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Answer a query with the configured team",
	Long: `Run the root team of the topology on a query and print its final answer.

Progress is printed as the supervisors route work: every decision, every
agent reply and every nested team run. Ctrl-C cancels the run and prints
what was produced so far.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		team, err := topology.Load(cfg.Topology)
		if err != nil {
			return err
		}

		var obs observe.Observer
		if !runQuiet {
			obs = newPrinter(cmd.ErrOrStderr(), runVerbose)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tp, stopTracing, err := startTracing(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer stopTracing()

		mesh, err := newMesh(cfg, team, obs, tp)
		if err != nil {
			return err
		}

		res, err := mesh.Respond(ctx, strings.Join(args, " "), runBudget)
		if err != nil && !engine.IsCancelled(err) {
			return err
		}

		printResult(cmd, res)

		if err != nil {
			return errors.New("run cancelled")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runBudget, "budget", 0, "Run budget of the root team (0 uses the configured budget)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Print the node trace of the root run")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Only print the final answer")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Include raw supervisor answers in the progress output")
}

func printResult(cmd *cobra.Command, res *engine.Result) {
	if res == nil {
		return
	}

	out := cmd.OutOrStdout()

	if runTrace {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.New(color.Bold).Sprint("trace:"), strings.Join(res.Trace, " → "))
	}

	if res.Reason != engine.TerminatedBySupervisor {
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("run ended early: %s", res.Reason))
	}

	latest, ok := res.Latest()
	if !ok {
		return
	}
	fmt.Fprintln(out, latest.Text())
}
