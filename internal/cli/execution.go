package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewExecutionCmd создаёт группу команд для работы с executions.
func NewExecutionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execution",
		Short: "Trigger and inspect executions",
	}

	cmd.AddCommand(
		newExecutionTriggerCmd(clientFn, outputFn),
		newExecutionListCmd(clientFn, outputFn),
		newExecutionShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newExecutionTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var dataJSON string
	var correlationID string

	cmd := &cobra.Command{
		Use:   "trigger WORKFLOW_ID",
		Short: "Trigger a workflow execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := TriggerExecutionRequest{CorrelationID: correlationID}
			if dataJSON != "" {
				if err := json.Unmarshal([]byte(dataJSON), &req.InitialData); err != nil {
					return fmt.Errorf("invalid --data JSON: %w", err)
				}
			}

			trigger, err := client.TriggerExecution(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Execution requested: %s", trigger.CorrelationID))
			out.Print(
				[]string{"WORKFLOW_ID", "CORRELATION_ID"},
				[][]string{{trigger.WorkflowID, trigger.CorrelationID}},
				trigger,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataJSON, "data", "", "Initial data as JSON object")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "Correlation id (generated if empty)")

	return cmd
}

func newExecutionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list WORKFLOW_ID",
		Short: "List executions of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			execs, err := client.ListExecutions(args[0], limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "CORRELATION_ID", "STARTED", "COMPLETED"}
			rows := make([][]string, len(execs))
			for i, e := range execs {
				rows[i] = []string{e.ID, e.Status, e.CorrelationID, e.StartedAt, e.CompletedAt}
			}

			out.Print(headers, rows, execs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of executions")

	return cmd
}

func newExecutionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show execution details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "STARTED", "COMPLETED", "ERROR"}
			rows := [][]string{{exec.ID, exec.Status, exec.StartedAt, exec.CompletedAt, exec.Error}}

			out.Print(headers, rows, exec)
			return nil
		},
	}
}
