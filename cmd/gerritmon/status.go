package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/dashboard"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked events from a running gerritmon",
	Long:  `Fetch the tracked-event list from a running gerritmon dashboard and print a colored summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		views, err := fetchEvents(statusAddr)
		if err != nil {
			return err
		}
		printEvents(views)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:8080", "base URL of the running dashboard")
	rootCmd.AddCommand(statusCmd)
}

func fetchEvents(addr string) ([]dashboard.EventView, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(addr + "/api/events")
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching events: unexpected status %s", resp.Status)
	}

	var views []dashboard.EventView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return views, nil
}

func printEvents(views []dashboard.EventView) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Tracked review events ==="))
	if len(views) == 0 {
		fmt.Printf("  %s\n", gray("No events tracked"))
		return
	}

	for _, view := range views {
		ballSprint := ballColorSprint(view.BallColor)
		fmt.Printf("%s %s change %s (%s) rev %s\n",
			ballSprint(ballIcon(view.BallColor)),
			view.Project, view.Change, view.Branch, view.Revision)
		fmt.Printf("    scan started: %v | scan done: %v | all builds completed: %v\n",
			view.TriggerScanStarted, view.TriggerScanDone, view.AllBuildsCompleted)
		if view.UnTriggered {
			fmt.Printf("    %s\n", gray("no triggers matched"))
		}
		for _, b := range view.Builds {
			runSprint := ballColorSprint(b.Color)
			run := b.RunID
			if run == "" {
				run = "not started"
			}
			fmt.Printf("    %s %-20s %-10s %s\n",
				runSprint(ballIcon(b.Color)), b.Project, b.Status, gray(run))
		}
		fmt.Println()
	}
}

// ballColorSprint maps a ball-color token to a terminal color.
func ballColorSprint(ball string) func(a ...interface{}) string {
	switch dashboardBase(ball) {
	case "blue":
		return color.New(color.FgBlue).SprintFunc()
	case "yellow":
		return color.New(color.FgYellow).SprintFunc()
	case "red":
		return color.New(color.FgRed).SprintFunc()
	case "disabled", "notbuilt":
		return color.New(color.FgHiBlack).SprintFunc()
	default:
		return color.New(color.FgWhite).SprintFunc()
	}
}

// ballIcon picks the bullet for a ball-color token; animated variants render
// hollow to suggest work in progress.
func ballIcon(ball string) string {
	if dashboardBase(ball) != ball {
		return "◌"
	}
	return "●"
}

func dashboardBase(ball string) string {
	const suffix = "_anime"
	if len(ball) > len(suffix) && ball[len(ball)-len(suffix):] == suffix {
		return ball[:len(ball)-len(suffix)]
	}
	return ball
}
