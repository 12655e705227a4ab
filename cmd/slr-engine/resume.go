// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/internal/workflow"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show where the project left off",
	Long: `Resume inspects the persisted state and reports which phase and step the
project should pick up at. The backend is only consulted when no local
state decides the answer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := projectID(cmd)
		if err != nil {
			return err
		}
		cfg := engineConfig(cmd)

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		target := workflow.Resume(context.Background(), s, newClient(cfg), pid)
		fmt.Printf("Project %s resumes at phase %d, %s\n", pid, target.Phase, stepName(target))
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Discard all local state for the project and start over",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := projectID(cmd)
		if err != nil {
			return err
		}
		cfg := engineConfig(cmd)

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		target, err := workflow.Restart(s, pid)
		if err != nil {
			return err
		}

		fmt.Printf("Project %s reset; start at phase %d, %s\n", pid, target.Phase, stepName(target))
		return nil
	},
}

func stepName(t workflow.Target) string {
	var steps []workflow.Step
	switch t.Phase {
	case 1:
		steps = workflow.Phase1Steps
	case 2:
		steps = workflow.Phase2Steps
	case 3:
		steps = workflow.Phase3Steps
	}
	if t.Step >= 0 && t.Step < len(steps) {
		return fmt.Sprintf("step %q", steps[t.Step].Name)
	}
	return fmt.Sprintf("step %d", t.Step+1)
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(restartCmd)
}
