// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage review projects (list, create, show, delete)",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects on the backend",
	RunE:  runProjectList,
}

func runProjectList(cmd *cobra.Command, args []string) error {
	client := newClient(engineConfig(cmd))

	projects, err := client.ListProjects(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-40s  %s\n", "ID", "Name", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, p := range projects {
		name := p.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-40s  %s\n", p.ID, name, p.CreatedAt)
	}
	fmt.Fprintf(os.Stdout, "\n%d projects\n", len(projects))
	return nil
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new review project",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectCreate,
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	client := newClient(engineConfig(cmd))

	project, err := client.CreateProject(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
	return nil
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one project's objective and confirmed questions",
	RunE:  runProjectShow,
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	pid, err := projectID(cmd)
	if err != nil {
		return err
	}
	client := newClient(engineConfig(cmd))

	project, err := client.GetProject(context.Background(), pid)
	if err != nil {
		return err
	}
	printProject(project)
	return nil
}

func printProject(p *types.Project) {
	fmt.Printf("Project: %s (%s)\n", p.Name, p.ID)
	if p.Objective != "" {
		fmt.Printf("\nObjective:\n%s\n", p.Objective)
	}
	if len(p.Questions) > 0 {
		fmt.Println("\nConfirmed research questions:")
		for i, q := range p.Questions {
			fmt.Printf("%d. %s\n", i+1, q.Question)
			if q.Purpose != "" {
				fmt.Printf("   %s\n", q.Purpose)
			}
		}
	}
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a project from the backend and clear its local state",
	RunE:  runProjectDelete,
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	pid, err := projectID(cmd)
	if err != nil {
		return err
	}
	cfg := engineConfig(cmd)
	client := newClient(cfg)

	if err := client.DeleteProject(context.Background(), pid); err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Delete(store.ProjectKeys(pid)...); err != nil {
		return err
	}

	fmt.Printf("Deleted project %s\n", pid)
	return nil
}

func init() {
	projectListCmd.Flags().Bool("json", false, "output as JSON")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	rootCmd.AddCommand(projectCmd)
}
