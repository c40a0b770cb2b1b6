// Package render prints timelines as terminal tables.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"example.com/timeline/internal/domain"
	"example.com/timeline/internal/timeline"
)

// Options controls table output.
type Options struct {
	UseColors bool
	// Units selects distance units, see UnitsMetric and UnitsStatuteUS.
	Units string
}

type palette struct {
	joint   func(...any) string
	failed  func(...any) string
	weekday func(...any) string
}

func newPalette(useColors bool) palette {
	if !useColors {
		return palette{joint: fmt.Sprint, failed: fmt.Sprint, weekday: fmt.Sprint}
	}
	return palette{
		joint:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		failed:  color.New(color.FgRed).SprintFunc(),
		weekday: color.New(color.FgCyan).SprintFunc(),
	}
}

// WriteWeekly renders the weekly view one row per activity, Monday first. Activities that
// belong to a joint session are highlighted and list their partners.
func WriteWeekly(w io.Writer, view timeline.WeeklyView, opts Options) error {
	colors := newPalette(opts.UseColors)
	owners := ownersByID(view)

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Day", "Time", "Account", "Activity", "Type", "Distance", "Duration", "Joint With"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, wd := range timeline.Weekdays {
		for _, entry := range view.Daily[wd] {
			r := entry.Record
			partners := partnerNames(r, owners)
			name := r.Name
			if len(partners) > 0 {
				name = colors.joint(name)
			}
			data = append(data, []string{
				colors.weekday(wd.String()),
				FormatTime(r.StartTimeLocal),
				entry.Profile.DisplayName,
				name,
				r.Type.TypeKey,
				optionalDistance(r.Distance, opts.Units),
				optionalDuration(r.Duration),
				strings.Join(partners, ", "),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Window %s: %d activities, %d joint sessions\n", view.Window, len(data), len(view.Links)); err != nil {
		return err
	}
	accounts := make([]string, 0, len(view.Errors))
	for account := range view.Errors {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)
	for _, account := range accounts {
		if _, err := fmt.Fprintln(w, colors.failed(fmt.Sprintf("%s: activities unavailable", account))); err != nil {
			return err
		}
	}
	return nil
}

// WriteConnections renders the connection directory.
func WriteConnections(w io.Writer, profiles []domain.Profile) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Display Name", "Full Name", "Location"})
	data := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		data = append(data, []string{p.DisplayName, p.FullName, p.Location})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func ownersByID(view timeline.WeeklyView) map[int64]string {
	owners := make(map[int64]string)
	for _, bucket := range view.Daily {
		for _, entry := range bucket {
			owners[entry.Record.ID] = entry.Profile.DisplayName
		}
	}
	return owners
}

func partnerNames(r *domain.ActivityRecord, owners map[int64]string) []string {
	var names []string
	for _, id := range r.Similar.IDs() {
		if name, ok := owners[id]; ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
