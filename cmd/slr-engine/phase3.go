// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/internal/chat"
	"github.com/aidul23/multiagent-slr-system/internal/report"
	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/internal/workflow"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

var phase3Cmd = &cobra.Command{
	Use:   "phase3",
	Short: "Report generation, refinement, and interactive query",
}

type phase3Env struct {
	cfg     types.EngineConfig
	store   *store.Store
	client  *api.Client
	machine *workflow.Phase3
	state   *types.Phase3State
	pid     string
}

func loadPhase3(cmd *cobra.Command) (*phase3Env, error) {
	pid, err := projectID(cmd)
	if err != nil {
		return nil, err
	}
	cfg := engineConfig(cmd)

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	state := types.DefaultPhase3State()
	s.Load(store.PhaseKey(pid, 3), &state)

	client := newClient(cfg)
	return &phase3Env{
		cfg:    cfg,
		store:  s,
		client: client,
		machine: &workflow.Phase3{
			ProjectID: pid,
			State:     &state,
			Backend:   client,
		},
		state: &state,
		pid:   pid,
	}, nil
}

// save persists the phase snapshot and mirrors the report document and its
// sources under their standalone keys.
func (e *phase3Env) save(sources []types.Source) error {
	defer e.store.Close()
	if e.state.ReportGenerated {
		if err := e.store.Save(store.ReportKey(e.pid), e.state.Report); err != nil {
			return err
		}
		if len(sources) > 0 {
			if err := e.store.Save(store.ReportSourcesKey(e.pid), sources); err != nil {
				return err
			}
		}
	}
	return e.store.Save(store.PhaseKey(e.pid, 3), e.state)
}

func (e *phase3Env) close() {
	e.store.Close()
}

// sources reads the persisted bibliography, falling back to the key older
// versions wrote.
func (e *phase3Env) sources() []types.Source {
	var sources []types.Source
	if !e.store.Load(store.ReportSourcesKey(e.pid), &sources) {
		e.store.Load(store.DeepSourcesKey(e.pid), &sources)
	}
	return sources
}

var phase3ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the review report",
	Long: `Report runs the batch report generation over the extracted data. Once a
report exists the stored copy is shown instead; use refine to change it.
With --deep, the long-form research pipeline is used, fed the full phase 1
context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase3(cmd)
		if err != nil {
			return err
		}

		p1 := types.DefaultPhase1State()
		env.store.Load(store.PhaseKey(env.pid, 1), &p1)

		var (
			body    string
			sources []types.Source
		)
		if deep, _ := cmd.Flags().GetBool("deep"); deep {
			body, sources, err = env.machine.DeepResearch(context.Background(), api.DeepResearchRequest{
				ProjectID:    env.pid,
				Objective:    p1.Objective,
				Questions:    p1.Confirmed,
				SearchString: p1.SearchString,
				Criteria:     criteriaLines(p1),
			})
		} else {
			body, sources, err = env.machine.Generate(context.Background(), p1.Confirmed)
		}
		if err != nil {
			env.close()
			return err
		}
		if err := env.save(sources); err != nil {
			return err
		}

		fmt.Println(body)
		return nil
	},
}

// criteriaLines renders the phase 1 retrieval criteria as human-readable
// lines for the deep research prompt.
func criteriaLines(p1 types.Phase1State) []string {
	var lines []string
	if p1.YearMode == types.YearModeSingle {
		lines = append(lines, fmt.Sprintf("Publication year: %d", p1.YearRange.Start))
	} else {
		lines = append(lines, fmt.Sprintf("Publication years: %d-%d", p1.YearRange.Start, p1.YearRange.End))
	}
	if len(p1.DataSources) > 0 {
		lines = append(lines, "Data sources: "+strings.Join(p1.DataSources, ", "))
	}
	if p1.IsPeerReviewed {
		lines = append(lines, "Peer-reviewed publications only")
	}
	if p1.IsEnglish {
		lines = append(lines, "English-language publications only")
	}
	return lines
}

var phase3RefineCmd = &cobra.Command{
	Use:   "refine [instruction]",
	Short: "Refine the report with a free-text instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase3(cmd)
		if err != nil {
			return err
		}

		sources := env.sources()
		if err := env.machine.Refine(context.Background(), args[0], sources); err != nil {
			env.close()
			return err
		}
		if err := env.save(sources); err != nil {
			return err
		}

		fmt.Println(env.state.Report)
		return nil
	},
}

var phase3DownloadCmd = &cobra.Command{
	Use:   "download [output file]",
	Short: "Write the report to a markdown or docx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase3(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if !env.state.ReportGenerated {
			return fmt.Errorf("no report to download; run 'phase3 report' first")
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			switch filepath.Ext(args[0]) {
			case ".docx":
				format = "docx"
			default:
				format = "md"
			}
		}

		switch format {
		case "md":
			err = report.WriteMarkdown(args[0], env.state.Report)
		case "docx":
			err = report.WriteDocx(args[0], env.state.Report)
		default:
			return fmt.Errorf("unknown format %q (want md or docx)", format)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", args[0])
		return nil
	},
}

var phase3ChatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about the report and its papers",
	Long: `Chat asks the retrieval-augmented backend about the project's papers. With
a question argument it asks once and exits; without one it reads questions
from stdin until EOF. The transcript persists across runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase3(cmd)
		if err != nil {
			return err
		}

		if err := env.machine.EnterQuery(); err != nil {
			env.close()
			return err
		}

		log := chat.NewLog(env.state.Messages)
		ask := func(query string) {
			answer := log.Ask(context.Background(), env.client, env.pid, query)
			fmt.Println(answer)
		}

		if len(args) == 1 {
			ask(args[0])
		} else {
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					continue
				}
				ask(query)
			}
			fmt.Println()
		}

		env.state.Messages = log.Messages()
		return env.save(nil)
	},
}

func init() {
	phase3ReportCmd.Flags().Bool("deep", false, "use the long-form research pipeline")
	phase3DownloadCmd.Flags().String("format", "", "output format: md or docx (default from file extension)")

	phase3Cmd.AddCommand(phase3ReportCmd)
	phase3Cmd.AddCommand(phase3RefineCmd)
	phase3Cmd.AddCommand(phase3DownloadCmd)
	phase3Cmd.AddCommand(phase3ChatCmd)

	rootCmd.AddCommand(phase3Cmd)
}
