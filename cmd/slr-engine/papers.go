// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Browse the local paper archive",
	Long: `Papers browses the archived copy of the retrieved papers. The archive is
written during phase 1 retrieval and survives a restart, so it works
offline and for projects whose workflow state has been cleared.`,
}

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the archived papers for the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := projectID(cmd)
		if err != nil {
			return err
		}

		a, err := openArchive(engineConfig(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		papers, err := a.Papers(context.Background(), pid)
		if err != nil {
			return err
		}
		printPapers(papers)
		return nil
	},
}

var papersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived papers by title, abstract, or author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := projectID(cmd)
		if err != nil {
			return err
		}

		a, err := openArchive(engineConfig(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		papers, err := a.SearchPapers(context.Background(), pid, args[0])
		if err != nil {
			return err
		}
		printPapers(papers)
		return nil
	},
}

func printPapers(papers []types.RetrievedPaper) {
	if len(papers) == 0 {
		fmt.Println("No papers found.")
		return
	}
	for i, p := range papers {
		fmt.Printf("%3d. %s (%d)\n", i+1, p.Title, p.Year)
		if len(p.Authors) > 0 {
			fmt.Printf("     %s\n", strings.Join(p.Authors, ", "))
		}
		if p.DOI != "" {
			fmt.Printf("     doi: %s\n", p.DOI)
		}
	}
	fmt.Printf("%d papers\n", len(papers))
}

func init() {
	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersSearchCmd)

	rootCmd.AddCommand(papersCmd)
}
