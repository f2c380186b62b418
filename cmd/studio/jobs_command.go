package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent caption and generation jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJobs()
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, formatJobs(list, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	return cmd
}

func formatJobs(list []*jobs.Job, color bool) string {
	rows := make([][]string, 0, len(list))
	for _, j := range list {
		detail := j.OutputPath
		if j.Status == jobs.StatusFailed {
			detail = j.ErrorKind
		}
		rows = append(rows, []string{
			shortID(j.ID),
			string(j.Kind),
			statusLabel(j.Status, color),
			j.Stage,
			baseName(j.Source),
			baseName(detail),
			j.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"ID", "Kind", "Status", "Stage", "Source", "Result", "Updated"},
		rows,
		nil,
	)
}

func statusLabel(status jobs.Status, color bool) string {
	label := string(status)
	if !color {
		return label
	}
	switch status {
	case jobs.StatusCompleted:
		return text.FgGreen.Sprint(label)
	case jobs.StatusFailed:
		return text.FgRed.Sprint(label)
	case jobs.StatusRunning:
		return text.FgYellow.Sprint(label)
	}
	return label
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
