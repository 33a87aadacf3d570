package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"robot_dashboard/internal/models"
	"robot_dashboard/internal/service"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

// commandLine rebuilds a command from cobra args. A single argument is taken
// verbatim so quoted pipelines pass through untouched.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return shellquote.Join(args...)
}

func parseRobotArg(s string) (int, error) {
	n, err := service.ParseRobotNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %s", service.RobotNumberHint, strconv.Quote(s))
	}
	return n, nil
}

func newExecCmd(root *rootOptions) *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:   "exec -- <command>",
		Short: "Run a command through the bridge",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := root.client()
			line := commandLine(args)
			if silent {
				res := c.ExecuteSilent(cmd.Context(), line)
				printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
				if res.Failed {
					return errors.New("command failed")
				}
				return nil
			}
			res, err := c.Execute(cmd.Context(), line)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "never fail on transport errors; report them as output")
	return cmd
}

func printResult(stdout, stderr io.Writer, res models.CommandResult) {
	if res.Output != "" {
		fmt.Fprint(stdout, res.Output)
	}
	if res.Error != "" {
		fmt.Fprint(stderr, res.Error)
	}
}

func newProbeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <robot-number>",
		Short: "Check whether the bridge process for a robot is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseRobotArg(args[0])
			if err != nil {
				return err
			}
			catalog := service.OptionsFromConfig(root.cfg).Catalog
			res := root.client().ExecuteSilent(cmd.Context(), catalog.ProbeBridge(n).String())
			up := !res.Failed && strings.TrimSpace(res.Output) != ""
			fmt.Fprintf(cmd.OutOrStdout(), "robot %d bridge running: %t\n", n, up)
			if !up {
				return fmt.Errorf("robot %d is not connected", n)
			}
			return nil
		},
	}
}

func newPairCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pair <robot-number>",
		Short: "Run pair, bringup and bridge for a robot and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseRobotArg(args[0])
			if err != nil {
				return err
			}
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			pairErr := a.services.Pairing.Pair(cmd.Context(), n)
			st := a.services.Pairing.PairingStatus()
			for _, line := range st.Log {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return pairErr
		},
	}
}

func newStateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the stored robot connection state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			writeState(cmd.OutOrStdout(), a.services.Robot.State())
			return nil
		},
	}
}

func writeState(w io.Writer, st models.RobotState) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	robot := "none"
	if st.HasRobot() {
		robot = strconv.Itoa(st.RobotNumber)
	}
	fmt.Fprintf(tw, "ROBOT\t%s\n", robot)
	fmt.Fprintf(tw, "PAIRED\t%t\n", st.RobotPaired)
	fmt.Fprintf(tw, "BATTERY\t%d%%\n", st.BatteryLevel)
	if !st.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "UPDATED\t%s\n", st.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	_ = tw.Flush()
}

func newTopicsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List ROS topics visible through the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := service.OptionsFromConfig(root.cfg)
			topics := service.NewTopicService(root.client(), opts.Catalog, opts.Catalog.AllowList())
			list, err := topics.ListTopics(cmd.Context())
			if err != nil {
				return err
			}
			writeTopics(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func writeTopics(w io.Writer, list []models.Topic) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTYPE")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.Type)
	}
	_ = tw.Flush()
}

func newLogsCmd(root *rootOptions) *cobra.Command {
	var (
		typ   string
		since time.Duration
		limit int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the robot activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			f := service.LogFilter{Type: typ, Limit: limit}
			if since > 0 {
				f.From = time.Now().Add(-since)
			}
			events, err := a.services.EventLog.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			writeEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only this event type (PAIRING, CONNECTION, TELEOP, VIDEO, COMMAND, ERROR)")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this, e.g. 1h")
	cmd.Flags().IntVar(&limit, "limit", 20, "newest N events, 0 for all")
	return cmd
}

func writeEvents(w io.Writer, events []models.RobotEvent) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tDESCRIPTION")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ev.OccurredAt.Local().Format(time.DateTime), ev.Type, ev.Description)
	}
	_ = tw.Flush()
}
