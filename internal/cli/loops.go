package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/service"
)

// inputLayouts are tried in order for --start and --end. Layouts without a
// zone are read in the configured timezone.
var inputLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// errLoopNotOnDevice is what a recipient sees for a link that yields no loop.
//
//nolint:staticcheck // user-facing sentence, capitalised on purpose.
var errLoopNotOnDevice = errors.New("Loop not found on this device")

// withApp loads the app for a one-shot command. Logs go to stderr so stdout
// carries only the command's output.
func withApp(cmd *cobra.Command, configPath func() string, fn func(a *app) error) error {
	a, err := loadApp(cmd.Context(), configPath(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newCreateCmd(configPath func() string) *cobra.Command {
	var name, start, end, stay string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a loop and print its share message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				loc := a.cfg.Location()
				startAt, err := parseInputTime(start, loc)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				endAt, err := parseInputTime(end, loc)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}

				l, err := a.loops.Create(cmd.Context(), service.CreateLoopInput{
					Name: name, StartAt: startAt, EndAt: endAt, ApproxStay: stay,
				})
				if err != nil {
					return err
				}
				share := a.loops.ShareLinkFor(l)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created loop %s\n\n%s\n", l.ID, share.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "loop name")
	cmd.Flags().StringVar(&start, "start", "", `start time, RFC 3339 or "YYYY-MM-DD HH:MM"`)
	cmd.Flags().StringVar(&end, "end", "", `end time, RFC 3339 or "YYYY-MM-DD HH:MM"`)
	cmd.Flags().StringVar(&stay, "stay", "", "approximate stay, free text")
	return cmd
}

func newOpenCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a share link and store the loop on this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				l, err := a.loops.OpenLink(cmd.Context(), args[0])
				if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrMalformedLink) {
					return errLoopNotOnDevice
				}
				if err != nil {
					return err
				}
				printLoop(cmd.OutOrStdout(), l, a.cfg.Location())
				return nil
			})
		},
	}
}

func newShareCmd(configPath func() string) *cobra.Command {
	var urlOnly bool

	cmd := &cobra.Command{
		Use:   "share <loop-id>",
		Short: "Print the share message for a stored loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				share, err := a.loops.Share(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if urlOnly {
					fmt.Fprintln(cmd.OutOrStdout(), share.URL)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), share.Message)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&urlOnly, "url", false, "print only the link")
	return cmd
}

func newListCmd(configPath func() string) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the loops stored on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				loops, total, err := a.loops.List(cmd.Context(), domain.NewPaginationParams(&page, &limit))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if total == 0 {
					fmt.Fprintln(out, "No loops found.")
					return nil
				}

				loc := a.cfg.Location()
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSTART\tEND\tWAYPOINTS")
				for _, l := range loops {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", l.ID, l.Name, formatLocal(l.StartAt, loc), formatLocal(l.EndAt, loc), len(l.Waypoints))
				}
				tw.Flush()
				fmt.Fprintf(out, "\n%d of %d loops\n", len(loops), total)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 20, "loops per page, at most 100")
	return cmd
}

func newDiscardCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <loop-id>",
		Short: "Remove a loop from this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				if err := a.loops.Discard(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Discarded loop %s\n", args[0])
				return nil
			})
		},
	}
}

func newExportCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every loop and waypoint as JSON rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, configPath, func(a *app) error {
				rows, err := a.export.Export(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			})
		},
	}
}

func parseInputTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("required")
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q", s)
}

func formatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// printLoop writes a short human-readable summary of l.
func printLoop(w io.Writer, l domain.Loop, loc *time.Location) {
	fmt.Fprintf(w, "%s (%s)\n", l.Name, l.ID)
	fmt.Fprintf(w, "  %s to %s\n", formatLocal(l.StartAt, loc), formatLocal(l.EndAt, loc))
	if l.ApproxStay != "" {
		fmt.Fprintf(w, "  stay: %s\n", l.ApproxStay)
	}
	for _, wp := range l.Waypoints {
		fmt.Fprintf(w, "  %d. %s (%.5f, %.5f)", wp.Order, wp.Label, wp.Latitude, wp.Longitude)
		if wp.StayHint != "" {
			fmt.Fprintf(w, " %s", wp.StayHint)
		}
		fmt.Fprintln(w)
	}
}
