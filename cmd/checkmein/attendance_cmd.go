package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/byliew07/CheckMeIN/internal/model"
)

func newCheckInCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "checkin <class name> <student username>",
		Short: "Mark today's attendance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.svc.MarkAttendance(cmd.Context(), args[0], args[1], model.Status(status))
			return a.report(cmd, msg, err)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(model.StatusPresent), "Present | Absent | Late | Excused")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <date> <class name> <student username> <status>",
		Short: "Change the status of an existing record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := a.svc.UpdateAttendance(cmd.Context(), args[0], args[1], args[2], model.Status(args[3]))
			if err != nil {
				return a.report(cmd, "", err)
			}
			if !updated {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching record")
				return errFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated")
			return nil
		},
	}
}

func newTodayCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show every class's attendance for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byClass := a.svc.GetAttendanceMapForDate(date)
			if len(byClass) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records")
				return nil
			}
			labels := studentLabels(a.svc)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tSTUDENT\tSTATUS")
			for _, class := range sortedKeys(byClass) {
				students := byClass[class]
				for _, s := range sortedKeys(students) {
					label := labels[s]
					if label == "" {
						label = s
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", class, label, students[s])
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date (YYYY-MM-DD), default today")
	return cmd
}

func newStudentHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "student-history <username>",
		Short: "Show a student's records, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := a.svc.GetStudentHistory(args[0])
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records for this student")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCLASS\tSTATUS\tTIME IN")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Date, r.ClassName, r.Status, r.TimeIn)
			}
			return w.Flush()
		},
	}
}

func newRosterCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "roster <class name>",
		Short: "Show every student's status in a class for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster := a.svc.GetClassRoster(args[0], date)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", roster.ClassName, roster.Date)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STUDENT\tSTATUS")
			for _, e := range roster.Entries {
				status := string(e.Status)
				if !e.Recorded {
					status += " (no record)"
				}
				fmt.Fprintf(w, "%s\t%s\n", e.Label, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, st := range model.Statuses {
				fmt.Fprintf(out, "%s: %d  ", st, roster.Totals[st])
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date (YYYY-MM-DD), default today")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
