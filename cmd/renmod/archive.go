package renmod

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/renmod/renmod/pkg/rpa"
)

func newRpaCmd() *cobra.Command {
	rpaCmd := &cobra.Command{
		Use:     "rpa",
		Short:   MsgRpaShort,
		GroupID: "core",
	}

	rpaCmd.AddCommand(newRpaListCmd())
	rpaCmd.AddCommand(newRpaInfoCmd())
	rpaCmd.AddCommand(newRpaExtractCmd())
	return rpaCmd
}

func newRpaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: MsgListShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := rpa.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = reader.Close() }()

			entries := reader.List()
			rows := pterm.TableData{{"Name", "Size", "Offset"}}
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					entry.SizeFormatted,
					fmt.Sprintf("%d", entry.Offset),
				})
			}

			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
			pterm.Printf("%d files, %s\n", len(entries), reader.Version())
			return nil
		},
	}
}

func newRpaInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <archive>",
		Short: MsgInfoShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := rpa.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = reader.Close() }()

			info := reader.Info()
			rows := pterm.TableData{
				{"Version", info.Version},
				{"Files", fmt.Sprintf("%d", info.FileCount)},
				{"Total size", info.TotalSizeFormatted},
				{"Archive size", info.ArchiveSizeFormatted},
			}

			exts := make([]string, 0, len(info.FileTypes))
			for ext := range info.FileTypes {
				exts = append(exts, ext)
			}
			sort.Strings(exts)
			for _, ext := range exts {
				rows = append(rows, []string{"  " + ext, fmt.Sprintf("%d", info.FileTypes[ext])})
			}

			return pterm.DefaultTable.WithData(rows).Render()
		},
	}
}

func newRpaExtractCmd() *cobra.Command {
	var (
		outputDir string
		only      []string
	)

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: MsgExtractShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := rpa.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = reader.Close() }()

			opts := rpa.ExtractOptions{}
			if len(only) > 0 {
				opts.Files = only
			}

			result, err := reader.Extract(outputDir, opts)
			if err != nil {
				return err
			}

			if result.Failed > 0 {
				pterm.Warning.Printfln("Extracted %d files to %s (%d failed)",
					result.Extracted, outputDir, result.Failed)
				return nil
			}
			pterm.Success.Printfln("Extracted %d files to %s", result.Extracted, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "extracted", "Output directory")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Extract only the named archive files")
	return cmd
}
