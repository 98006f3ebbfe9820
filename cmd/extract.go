package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/extract"
	"github.com/lockdown-systems/icewatch/internal/fetcher"
	"github.com/lockdown-systems/icewatch/internal/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract facility records from a downloaded workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "extract"))

		input, _ := cmd.Flags().GetString("input")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = cfg.Extract.OutputDir
		}

		// The workbook filename carries the reporting date.
		sourceDate := fetcher.SourceDateFromURL(input)

		snap, err := extract.Extract(input, sourceDate, extractOptions())
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		outPath := filepath.Join(outputDir, fmt.Sprintf("ice_facilities_%s.json", runTimestamp()))
		if err := model.WriteSnapshot(snap, outPath); err != nil {
			return eris.Wrap(err, "extract: write snapshot")
		}

		log.Info("snapshot written",
			zap.String("path", outPath),
			zap.Int("facilities", snap.Metadata.TotalFacilities),
		)
		fmt.Println(outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("input", "", "workbook file to extract (required)")
	extractCmd.Flags().String("output-dir", "", "directory for the snapshot JSON")
	_ = extractCmd.MarkFlagRequired("input")
}
