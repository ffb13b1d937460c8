package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the tournament leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/stats/leaderboard")
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show tournament-wide statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/stats/tournament")
	},
}

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Show per-map match statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/stats/maps")
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the recent match activity feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/stats/recent-activity")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
