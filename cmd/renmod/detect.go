package renmod

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/game"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "detect <game-root>",
		Short:   MsgDetectShort,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			detector := game.NewDetector(filesystem.NewOS(), cfg)
			found, err := detector.Detect(args[0])
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Game folder: %s", found)
			return nil
		},
	}
}
