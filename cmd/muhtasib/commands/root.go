package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "muhtasib",
	Short: "muhtasib - 트레이딩 세션 성과 리포팅 서비스",
	Long: `muhtasib Unified CLI

Read-only reporting over recorded trading sessions:
equity curves, orders and derived performance.

Usage:
  go run ./cmd/muhtasib [command]

Examples:
  go run ./cmd/muhtasib api
  go run ./cmd/muhtasib sessions
  go run ./cmd/muhtasib report 3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b
  go run ./cmd/muhtasib scheduler start
  go run ./cmd/muhtasib test-db`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 플래그가 환경변수보다 우선
		if cmd.Flags().Changed("env") {
			if err := os.Setenv("ENV", env); err != nil {
				return err
			}
		}
		if verbose {
			return os.Setenv("LOG_LEVEL", "debug")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
