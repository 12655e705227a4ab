// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/internal/workflow"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

var phase1Cmd = &cobra.Command{
	Use:   "phase1",
	Short: "Research setup: objective, questions, criteria, retrieval",
	Long: `Phase 1 walks the review through research setup. Generate an objective
from a topic prompt, derive and confirm research questions, build a search
string, set selection criteria, and retrieve papers from the selected data
sources. Confirmed questions are locked and cannot change afterwards.`,
}

// phase1Env bundles everything a phase 1 subcommand touches. The store is
// open until close is called.
type phase1Env struct {
	cfg     types.EngineConfig
	store   *store.Store
	client  *api.Client
	machine *workflow.Phase1
	state   *types.Phase1State
	pid     string
}

// loadPhase1 opens the store, loads the defaults-primed snapshot, and wires
// the machine.
func loadPhase1(cmd *cobra.Command) (*phase1Env, error) {
	pid, err := projectID(cmd)
	if err != nil {
		return nil, err
	}
	cfg := engineConfig(cmd)

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	state := types.DefaultPhase1State()
	state.Models = cfg.Generation.Model
	state.SearchStrategy = cfg.Generation.SearchStrategy
	s.Load(store.PhaseKey(pid, 1), &state)

	client := newClient(cfg)
	return &phase1Env{
		cfg:    cfg,
		store:  s,
		client: client,
		machine: &workflow.Phase1{
			ProjectID: pid,
			State:     &state,
			Backend:   client,
		},
		state: &state,
		pid:   pid,
	}, nil
}

// save persists the snapshot and closes the store.
func (e *phase1Env) save() error {
	defer e.store.Close()
	return e.store.Save(store.PhaseKey(e.pid, 1), e.state)
}

func (e *phase1Env) close() {
	e.store.Close()
}

var phase1ObjectiveCmd = &cobra.Command{
	Use:   "objective [topic prompt]",
	Short: "Generate a research objective from a topic prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		if err := env.machine.GenerateObjective(context.Background(), strings.Join(args, " ")); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("Objective:\n%s\n", env.state.Objective)
		return nil
	},
}

var phase1QuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate research questions from the objective",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		if err := env.machine.GenerateQuestions(context.Background()); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		for i, q := range env.state.Questions {
			fmt.Printf("%d. %s\n", i+1, q.Question)
			if q.Purpose != "" {
				fmt.Printf("   %s\n", q.Purpose)
			}
		}
		return nil
	},
}

var phase1ConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Select and confirm research questions (one-way)",
	Long: `Confirm locks the selected research questions against the project. The
--select flag takes 1-based question numbers. Confirmation is one-way: once
locked, questions cannot be edited, added, or re-selected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		selections, _ := cmd.Flags().GetIntSlice("select")
		for _, n := range selections {
			if err := env.machine.ToggleSelect(n - 1); err != nil {
				env.close()
				return err
			}
		}

		if err := env.machine.Confirm(context.Background()); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("Confirmed %d research questions (locked)\n", len(env.state.Confirmed))
		return nil
	},
}

var phase1SearchStringCmd = &cobra.Command{
	Use:   "searchstring",
	Short: "Generate or set the boolean search string",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		if manual, _ := cmd.Flags().GetString("set"); manual != "" {
			env.machine.SetSearchString(manual)
		} else {
			if err := env.machine.GenerateSearchString(context.Background()); err != nil {
				env.close()
				return err
			}
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("Search string:\n%s\n", env.state.SearchString)
		return nil
	},
}

var phase1CriteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Set selection criteria and advance to retrieval",
	Long: `Criteria sets the retrieval filters and advances to the retrieval step.
Filters come from flags, or from a YAML criteria file via --file; flags
override the file. --save writes the resulting criteria back to a file for
reuse in another review.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("file"); path != "" {
			cf, err := workflow.ReadCriteriaFile(path)
			if err != nil {
				env.close()
				return err
			}
			cf.Apply(env.state)
		}
		applyCriteriaFlags(cmd, env.state)

		if path, _ := cmd.Flags().GetString("save"); path != "" {
			if err := workflow.WriteCriteriaFile(path, env.state); err != nil {
				env.close()
				return err
			}
		}
		if err := env.machine.ApplyCriteria(); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("Criteria set: %d-%d, sources %s, limit %d\n",
			env.state.YearRange.Start, env.state.YearRange.End,
			strings.Join(env.state.DataSources, ", "), env.state.Limit)
		return nil
	},
}

// applyCriteriaFlags folds the criteria flags into the snapshot. Unset
// flags leave the persisted values alone.
func applyCriteriaFlags(cmd *cobra.Command, state *types.Phase1State) {
	if cmd.Flags().Changed("start-year") {
		state.YearRange.Start, _ = cmd.Flags().GetInt("start-year")
	}
	if cmd.Flags().Changed("end-year") {
		state.YearRange.End, _ = cmd.Flags().GetInt("end-year")
	}
	if cmd.Flags().Changed("single-year") {
		if single, _ := cmd.Flags().GetBool("single-year"); single {
			state.YearMode = types.YearModeSingle
		} else {
			state.YearMode = types.YearModeRange
		}
	}
	if cmd.Flags().Changed("sources") {
		state.DataSources, _ = cmd.Flags().GetStringSlice("sources")
	}
	if cmd.Flags().Changed("peer-reviewed") {
		state.IsPeerReviewed, _ = cmd.Flags().GetBool("peer-reviewed")
	}
	if cmd.Flags().Changed("english") {
		state.IsEnglish, _ = cmd.Flags().GetBool("english")
	}
	if cmd.Flags().Changed("sort") {
		state.SortBy, _ = cmd.Flags().GetString("sort")
	}
	if cmd.Flags().Changed("limit") {
		state.Limit, _ = cmd.Flags().GetInt("limit")
	}
}

var phase1RetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Run the search and store the retrieved papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase1(cmd)
		if err != nil {
			return err
		}

		papers, err := env.machine.FindPapers(context.Background())
		if err != nil {
			env.close()
			return err
		}

		if err := env.store.Save(store.RetrievedPapersKey(env.pid), papers); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		// Mirror into the local archive for offline listing and search.
		a, err := openArchive(env.cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.SavePapers(context.Background(), env.pid, papers); err != nil {
			return err
		}

		fmt.Printf("Retrieved %d papers; continue with phase2\n", len(papers))
		return nil
	},
}

func init() {
	phase1ConfirmCmd.Flags().IntSlice("select", nil, "1-based question numbers to confirm")
	phase1SearchStringCmd.Flags().String("set", "", "set the search string by hand instead of generating")

	phase1CriteriaCmd.Flags().String("file", "", "load criteria from a YAML file")
	phase1CriteriaCmd.Flags().String("save", "", "save the resulting criteria to a YAML file")
	phase1CriteriaCmd.Flags().Int("start-year", 0, "first publication year")
	phase1CriteriaCmd.Flags().Int("end-year", 0, "last publication year")
	phase1CriteriaCmd.Flags().Bool("single-year", false, "search a single year (start year only)")
	phase1CriteriaCmd.Flags().StringSlice("sources", nil, "data sources: IEEE, Elsevier, ACM")
	phase1CriteriaCmd.Flags().Bool("peer-reviewed", true, "restrict to peer-reviewed papers")
	phase1CriteriaCmd.Flags().Bool("english", true, "restrict to English-language papers")
	phase1CriteriaCmd.Flags().String("sort", "relevance", "sort order: relevance or citations")
	phase1CriteriaCmd.Flags().Int("limit", 100, "maximum papers per source")

	phase1Cmd.AddCommand(phase1ObjectiveCmd)
	phase1Cmd.AddCommand(phase1QuestionsCmd)
	phase1Cmd.AddCommand(phase1ConfirmCmd)
	phase1Cmd.AddCommand(phase1SearchStringCmd)
	phase1Cmd.AddCommand(phase1CriteriaCmd)
	phase1Cmd.AddCommand(phase1RetrieveCmd)

	rootCmd.AddCommand(phase1Cmd)
}
