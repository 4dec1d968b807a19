// Flowgrid CLI — инструмент командной строки для работы с
// workflows, executions и credentials через HTTP API.
//
// Использование:
//
//	flowgrid [--api-url URL] [--user UUID] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	workflow    Просмотр workflows
//	execution   Запуск и просмотр executions
//	credential  Управление credentials
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Flowgrid/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var userID string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "flowgrid",
		Short:         "Flowgrid CLI — workflow automation tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("FLOWGRID_USER_ID"), "User id for X-User-ID header")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL, userID) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewWorkflowCmd(clientFn, outputFn),
		cli.NewExecutionCmd(clientFn, outputFn),
		cli.NewCredentialCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
