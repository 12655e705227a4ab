// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidul23/multiagent-slr-system/internal/api"
	"github.com/aidul23/multiagent-slr-system/internal/store"
	"github.com/aidul23/multiagent-slr-system/internal/workflow"
	"github.com/aidul23/multiagent-slr-system/pkg/types"
)

var phase2Cmd = &cobra.Command{
	Use:   "phase2",
	Short: "Paper management: selection, upload, extraction",
	Long: `Phase 2 manages the retrieved papers. Select the ones worth full-text
review, upload their PDFs, configure what to extract, and run the batch
extraction. With no retrieved papers the selection step is skipped.`,
}

type phase2Env struct {
	cfg     types.EngineConfig
	store   *store.Store
	client  *api.Client
	machine *workflow.Phase2
	state   *types.Phase2State
	pid     string
}

func loadPhase2(cmd *cobra.Command) (*phase2Env, error) {
	pid, err := projectID(cmd)
	if err != nil {
		return nil, err
	}
	cfg := engineConfig(cmd)

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	state := types.DefaultPhase2State()
	s.Load(store.PhaseKey(pid, 2), &state)

	var papers []types.RetrievedPaper
	s.Load(store.RetrievedPapersKey(pid), &papers)

	client := newClient(cfg)
	return &phase2Env{
		cfg:    cfg,
		store:  s,
		client: client,
		machine: &workflow.Phase2{
			ProjectID: pid,
			State:     &state,
			Papers:    papers,
			Backend:   client,
			Out:       os.Stdout,
		},
		state: &state,
		pid:   pid,
	}, nil
}

func (e *phase2Env) save() error {
	defer e.store.Close()
	if err := e.store.Save(store.SelectedPapersKey(e.pid), e.state.SelectedPaperIDs); err != nil {
		return err
	}
	return e.store.Save(store.PhaseKey(e.pid, 2), e.state)
}

func (e *phase2Env) close() {
	e.store.Close()
}

var phase2StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show papers, selections, and upload states",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		visible, _ := env.machine.Steps()
		names := make([]string, len(visible))
		for i, s := range visible {
			names[i] = s.Name
		}
		fmt.Printf("Steps: %s (at %d of %d)\n", strings.Join(names, " > "),
			env.state.CurrentStep+1, len(visible))

		if len(env.machine.Papers) > 0 {
			fmt.Printf("\n%d retrieved papers:\n", len(env.machine.Papers))
			for i, p := range env.machine.Papers {
				mark := " "
				if env.machine.Selected(i) {
					mark = "x"
				}
				fmt.Printf("[%s] %3d. %s (%d)\n", mark, i+1, p.Title, p.Year)
			}
		}

		if len(env.state.Files) > 0 {
			fmt.Println("\nFiles:")
			for _, f := range env.state.Files {
				line := fmt.Sprintf("%-9s %s", f.Status, f.Name)
				if f.Error != "" {
					line += ": " + f.Error
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

var phase2SelectCmd = &cobra.Command{
	Use:   "select [paper numbers]",
	Short: "Toggle papers for full-text review (1-based numbers)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}

		for _, arg := range args {
			var n int
			if _, err := fmt.Sscanf(arg, "%d", &n); err != nil {
				env.close()
				return fmt.Errorf("invalid paper number %q", arg)
			}
			if err := env.machine.ToggleSelect(n - 1); err != nil {
				env.close()
				return err
			}
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("%d papers selected\n", len(env.state.SelectedPaperIDs))
		return nil
	},
}

var phase2UploadCmd = &cobra.Command{
	Use:   "upload [pdf files]",
	Short: "Upload PDFs; failures are per-file and retryable",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}

		if err := env.machine.BeginUpload(); err != nil {
			env.close()
			return err
		}

		// Pick up files the backend already has from a previous run.
		if err := env.machine.SyncUploaded(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not list uploaded PDFs: %v\n", err)
		}

		summary, err := env.machine.Upload(context.Background(), args)
		if err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("\nuploaded: %d, failed: %d\n", summary.Uploaded, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed to upload", summary.Failed)
		}
		return nil
	},
}

var phase2DeletePDFCmd = &cobra.Command{
	Use:   "delete-pdf [file name]",
	Short: "Remove an uploaded PDF from the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}

		if err := env.machine.DeletePDF(context.Background(), args[0]); err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var phase2ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the batch extraction over all uploaded PDFs",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}

		if fields, _ := cmd.Flags().GetStringSlice("fields"); len(fields) > 0 {
			schema := make([]types.ExtractionField, len(fields))
			for i, name := range fields {
				schema[i] = types.ExtractionField{Name: name, Type: types.FieldText}
			}
			if err := env.machine.ConfigureFields(schema); err != nil {
				env.close()
				return err
			}
		}

		rows, err := env.machine.Extract(context.Background())
		if err != nil {
			env.close()
			return err
		}
		if err := env.save(); err != nil {
			return err
		}

		// Mirror extraction into the local archive.
		a, err := openArchive(env.cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.SaveExtraction(context.Background(), env.pid, env.state.Fields, rows); err != nil {
			return err
		}

		fmt.Printf("Extracted %d rows\n", len(rows))
		return nil
	},
}

var phase2ResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the extraction results",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadPhase2(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if !env.state.Extracted {
			fmt.Println("No extraction has run yet.")
			return nil
		}
		for i, row := range env.state.Rows {
			fmt.Printf("--- row %d ---\n", i+1)
			for _, f := range env.state.Fields {
				fmt.Printf("%-10s %v\n", f.Name+":", row[f.Name])
			}
		}
		return nil
	},
}

var phase2CSVCmd = &cobra.Command{
	Use:   "csv [output file]",
	Short: "Export extracted data as CSV",
	Long: `CSV exports the extraction results. By default the backend's CSV export
is downloaded; with --local the CSV is built from the local archive instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := projectID(cmd)
		if err != nil {
			return err
		}
		cfg := engineConfig(cmd)

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		defer f.Close()

		if local, _ := cmd.Flags().GetBool("local"); local {
			a, err := openArchive(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.ExportCSV(context.Background(), pid, f); err != nil {
				return err
			}
		} else {
			client := newClient(cfg)
			if err := client.DownloadCSV(context.Background(), pid, "extracted_data.csv", f); err != nil {
				return err
			}
		}

		fmt.Printf("Wrote %s\n", args[0])
		return nil
	},
}

func init() {
	phase2ExtractCmd.Flags().StringSlice("fields", nil, "replace the extraction schema with these field names")
	phase2CSVCmd.Flags().Bool("local", false, "export from the local archive instead of the backend")

	phase2Cmd.AddCommand(phase2StatusCmd)
	phase2Cmd.AddCommand(phase2SelectCmd)
	phase2Cmd.AddCommand(phase2UploadCmd)
	phase2Cmd.AddCommand(phase2DeletePDFCmd)
	phase2Cmd.AddCommand(phase2ExtractCmd)
	phase2Cmd.AddCommand(phase2ResultsCmd)
	phase2Cmd.AddCommand(phase2CSVCmd)

	rootCmd.AddCommand(phase2Cmd)
}
