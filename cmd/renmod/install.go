package renmod

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/merge"
	"github.com/renmod/renmod/pkg/types"
)

func newInstallCmd() *cobra.Command {
	var (
		strategyName string
		prefix       string
		dryRun       bool
		reportFile   string
	)

	cmd := &cobra.Command{
		Use:     "install <game-dir> <mod>...",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameDir := args[0]
			modPaths := args[1:]

			strategy, err := types.ParseStrategy(strategyName)
			if err != nil {
				return err
			}

			cfg, err := config.Load(gameDir)
			if err != nil {
				return err
			}
			if prefix != "" {
				cfg.Mods.Prefix = prefix
			}

			fs := filesystem.NewOS()
			if info, err := fs.Stat(gameDir); err != nil || !info.IsDir() {
				return fmt.Errorf("game directory %s does not exist", gameDir)
			}

			orchestrator, err := merge.NewOrchestrator(fs, cfg, strategy)
			if err != nil {
				return err
			}
			orchestrator.DryRun = dryRun

			prepared := orchestrator.PrepareMods(modPaths, gameDir)
			result := orchestrator.InstallAll(prepared)

			renderRunResult(result, dryRun)

			if reportFile != "" {
				if err := writeRunReport(reportFile, result); err != nil {
					return err
				}
				pterm.Info.Printfln("Wrote report to %s", reportFile)
			}

			if result.Total.Errors > 0 {
				return fmt.Errorf("%d files failed to install", result.Total.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "new-file",
		"Conflict strategy: new-file, replace or skip")
	cmd.Flags().StringVar(&prefix, "prefix", "",
		"Override the prefix used for conflict-renamed files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Resolve and report without writing any file")
	cmd.Flags().StringVar(&reportFile, "report", "",
		"Write a YAML run report to the given file")
	return cmd
}

func renderRunResult(result merge.RunResult, dryRun bool) {
	rows := pterm.TableData{{"Mod", "Installed", "Skipped", "Replaced", "New files", "Errors"}}
	for _, modResult := range result.Mods {
		rows = append(rows, []string{
			fmt.Sprintf("%d. %s", modResult.Priority, modResult.Name),
			fmt.Sprintf("%d", modResult.Stats.Installed),
			fmt.Sprintf("%d", modResult.Stats.Skipped),
			fmt.Sprintf("%d", modResult.Stats.Replaced),
			fmt.Sprintf("%d", modResult.Stats.NewFiles),
			fmt.Sprintf("%d", modResult.Stats.Errors),
		})
	}
	rows = append(rows, []string{
		"Total",
		fmt.Sprintf("%d", result.Total.Installed),
		fmt.Sprintf("%d", result.Total.Skipped),
		fmt.Sprintf("%d", result.Total.Replaced),
		fmt.Sprintf("%d", result.Total.NewFiles),
		fmt.Sprintf("%d", result.Total.Errors),
	})

	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		pterm.Error.Println(err)
	}

	if len(result.Conflicts) > 0 {
		pterm.Warning.Printfln("%d files conflict with existing game content:", len(result.Conflicts))
		for _, name := range result.Conflicts.Filenames() {
			pterm.Printf("  %s  (%s)\n", name, strings.Join(result.Conflicts[name], ", "))
		}
	}

	if dryRun {
		pterm.Info.Println("Dry run: no files were written")
	}
}

func writeRunReport(path string, result merge.RunResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
