package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/launcher"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <class name>",
		Short: "Count records per status for a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := a.svc.GetClassAttendanceStats(args[0])
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCOUNT")
			for _, st := range model.Statuses {
				fmt.Fprintf(w, "%s\t%d\n", st, stats[st])
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history <class name>",
		Short: "Daily attendance rate over the last N days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = a.cfg.Export.TrendDays
			}
			rates := a.svc.GetAttendanceHistoryForClass(args[0], days)
			if len(rates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent data")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tRATE\tPRESENT/TOTAL")
			for _, r := range rates {
				fmt.Fprintf(w, "%s\t%.1f%%\t%d/%d\n", r.Date, r.Rate, r.Present, r.Total)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&days, "days", "n", 0, "window in days (default export.trend_days)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var open bool

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports to xlsx (csv fallback)",
	}
	exportCmd.PersistentFlags().BoolVarP(&open, "open", "o", false, "open the file afterwards")

	classCmd := &cobra.Command{
		Use:   "class <class name>",
		Short: "Export per-date status counts for a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.ExportClassStatsToExcel(cmd.Context(), args[0])
			if err != nil {
				return a.report(cmd, "", err)
			}
			return a.exported(cmd, res, open)
		},
	}

	studentCmd := &cobra.Command{
		Use:   "student <username>",
		Short: "Export a student's attendance history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.ExportStudentHistoryToExcel(cmd.Context(), args[0])
			if err != nil {
				return a.report(cmd, "", err)
			}
			return a.exported(cmd, res, open)
		},
	}

	exportCmd.AddCommand(classCmd, studentCmd)
	return exportCmd
}

func newTrendCmd(a *app) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "trend <class name>",
		Short: "Plot the attendance-rate trend chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.svc.PlotAttendanceTrend(cmd.Context(), args[0])
			if err != nil {
				return a.report(cmd, "", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart saved: %s\n", path)
			if open {
				a.open(path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&open, "open", "o", false, "open the chart afterwards")
	return cmd
}

func (a *app) exported(cmd *cobra.Command, res *export.Result, open bool) error {
	out := cmd.OutOrStdout()
	if res.Fallback != nil {
		a.logger.Warn("xlsx 写入失败，已改写为 CSV", zap.String("path", res.Path), zap.Error(res.Fallback))
		fmt.Fprintln(out, "Excel export unavailable, saved as CSV instead")
	}
	fmt.Fprintf(out, "Exported: %s\n", res.Path)
	if open {
		a.open(res.Path)
	}
	return nil
}

// open 打开失败只记录日志，不影响导出结果
func (a *app) open(path string) {
	if err := launcher.Open(path); err != nil {
		a.logger.Warn("打开文件失败", zap.String("path", path), zap.Error(err))
	}
}
