package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/heimgewebe/lenskit/pkg/client"
)

var (
	baseURL   string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "lenskit CLI - Browse and select files through the navigation service",
	Long: `lens is a command-line client for the lenskit navigation service.

Navigation is token-chained: start with "lens roots", descend with
"lens ls <token>", and expand a selection with "lens materialize". Paths are
never sent to the service directly; every step is addressed by a capability
token the service issued.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", getEnvOrDefault("RLENS_API_URL", "http://127.0.0.1:8080"), "lenskit API base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("RLENS_TOKEN"), "service auth token")
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func newClient() *client.Client {
	return client.NewClient(baseURL, authToken)
}
