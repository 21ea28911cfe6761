package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/umojalearning/umoja-backend/cmd/http"
	systemcmd "github.com/umojalearning/umoja-backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "umoja",
	Short: "Umoja learner assessment platform backend.",
	Long: `Umoja is the backend for a parent and child learning platform.
It mirrors identity-provider accounts, records questionnaire sessions,
links guardians to children, and produces learner profiles.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
