package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"queridodiario/internal/models"
	"queridodiario/internal/panelclient"
)

// panelOptions are the flags shared by the panel subcommands
type panelOptions struct {
	server string
	link   string
	date   string
}

func (o *panelOptions) open(cmd *cobra.Command) (*panelclient.Panel, error) {
	link := o.link
	if link == "" {
		link = os.Getenv("QD_PANEL_LINK")
	}
	if link == "" {
		return nil, errors.New("a panel link or token is required (--link or QD_PANEL_LINK)")
	}
	token, err := panelclient.TokenFromURL(link)
	if err != nil {
		return nil, err
	}

	p := panelclient.NewPanel(panelclient.New(o.server, token))
	if o.date != "" {
		_, err = p.GoToDay(cmd.Context(), o.date)
	} else {
		_, err = p.Load(cmd.Context())
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newPanelCmd() *cobra.Command {
	opts := &panelOptions{}

	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Use a diary's daily panel",
		Long: `Use a diary's daily panel through its shared link.

Without --date the server opens the last day with activity.

Examples:
  qdctl panel show --link "https://diario.example.com/painel#token=..."
  qdctl panel mark <activity-id> done --date 2024-03-01
  qdctl panel tap <activity-id> - --comment "não quis escovar"
  qdctl panel note "Dia tranquilo"`,
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "Querido Diário server URL")
	cmd.PersistentFlags().StringVar(&opts.link, "link", "", "shared panel link or bare access token")
	cmd.PersistentFlags().StringVar(&opts.date, "date", "", "day to open (YYYY-MM-DD)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the panel of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd)
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), p.Snapshot())
		},
	}

	mark := &cobra.Command{
		Use:       "mark <activity-id> <done|not_done|skipped>",
		Short:     "Mark a binary or extra activity",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(models.StatusDone), string(models.StatusNotDone), string(models.StatusSkipped)},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd)
			if err != nil {
				return err
			}
			snap, err := p.Mark(cmd.Context(), args[0], models.CompletionStatus(args[1]))
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}

	var comment string
	tap := &cobra.Command{
		Use:   "tap <activity-id> <+|->",
		Short: "Count one positive or negative occurrence of an incremental activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var positive bool
			switch args[1] {
			case "+":
				positive = true
			case "-":
			default:
				return fmt.Errorf("direction must be + or -, got %q", args[1])
			}

			p, err := opts.open(cmd)
			if err != nil {
				return err
			}
			snap, err := p.Tap(cmd.Context(), args[0], positive, comment)
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}
	tap.Flags().StringVar(&comment, "comment", "", "optional comment for the occurrence")

	note := &cobra.Command{
		Use:   "note <content>",
		Short: "Replace the note of the day; an empty string clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd)
			if err != nil {
				return err
			}
			snap, err := p.SaveNote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}

	cmd.AddCommand(show, mark, tap, note)
	return cmd
}

func printSnapshot(out io.Writer, snap *models.DaySnapshot) error {
	fmt.Fprintf(out, "%s %s  %s (%s)  total %d pts  %d/%d marked\n",
		snap.Diary.Avatar, snap.Diary.Name, snap.Date, snap.DayOfWeek.Label(),
		snap.TotalPoints, snap.Progress.Marked, snap.Progress.Total)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range snap.Routines {
		fmt.Fprintf(w, "\n%s %s\t\t\t\t\n", r.Icon, r.Name)
		for _, a := range r.Activities {
			state := string(a.Status)
			if a.Type == models.ActivityIncremental && !a.IsExtra {
				state = fmt.Sprintf("%+d (%dx)", a.Value, a.Count)
			}
			title := a.Icon + " " + a.Title
			if a.ScheduledTime != "" {
				title = a.ScheduledTime + " " + title
			}
			if a.IsExtra {
				title += " [extra]"
			}
			fmt.Fprintf(w, "  %s\t%d pts\t%s\t%s\n", title, a.Points, state, a.ID)
		}
	}
	if snap.Note != "" {
		fmt.Fprintf(w, "\nNota: %s\n", strings.TrimSpace(snap.Note))
	}
	return w.Flush()
}
