package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/model"
	"github.com/lockdown-systems/icewatch/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the facility map page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "render"))

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Render.Output
		}

		snap, err := model.ReadSnapshot(input)
		if err != nil {
			return eris.Wrap(err, "render: read snapshot")
		}

		if err := render.Render(snap, output); err != nil {
			return eris.Wrap(err, "render")
		}

		log.Info("map written", zap.String("path", output))
		fmt.Println(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("input", "", "geocoded facility snapshot JSON (required)")
	renderCmd.Flags().String("output", "", "output HTML path (default: docs/index.html)")
	_ = renderCmd.MarkFlagRequired("input")
}
