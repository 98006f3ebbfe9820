package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/extract"
	"github.com/lockdown-systems/icewatch/internal/model"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the detention statistics workbook",
	Long: `Scans the detention management page for the latest statistics workbook
link and downloads it. Pass --url to skip discovery and fetch a known file,
--verify to check the download opens as a workbook, and --extract to chain
straight into extraction.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "fetch"))

		urlFlag, _ := cmd.Flags().GetString("url")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		noDiscover, _ := cmd.Flags().GetBool("no-discover")
		verify, _ := cmd.Flags().GetBool("verify")
		extractAfter, _ := cmd.Flags().GetBool("extract")
		progress, _ := cmd.Flags().GetBool("progress")

		if outputDir == "" {
			outputDir = cfg.Fetch.OutputDir
		}

		f := newFetcher(progress)

		workbookURL := urlFlag
		if workbookURL == "" && !noDiscover {
			discovered, err := f.DiscoverWorkbookURL(ctx, cfg.Fetch.PageURL)
			if err != nil {
				log.Warn("link discovery failed, falling back to default URL", zap.Error(err))
			} else {
				workbookURL = discovered
			}
		}
		if workbookURL == "" {
			workbookURL = cfg.Fetch.DefaultURL
		}

		path, sourceDate, err := f.DownloadWorkbook(ctx, workbookURL, outputDir)
		if err != nil {
			return eris.Wrap(err, "fetch: download")
		}

		if verify {
			if err := extract.Verify(path); err != nil {
				return eris.Wrap(err, "fetch: verify")
			}
		}

		fmt.Println(path)

		if extractAfter {
			snap, err := extract.Extract(path, sourceDate, extractOptions())
			if err != nil {
				return eris.Wrap(err, "fetch: extract")
			}
			outPath := filepath.Join(outputDir, fmt.Sprintf("ice_facilities_%s.json", runTimestamp()))
			if err := model.WriteSnapshot(snap, outPath); err != nil {
				return eris.Wrap(err, "fetch: write snapshot")
			}
			log.Info("snapshot written", zap.String("path", outPath))
			fmt.Println(outPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("url", "", "direct workbook URL (skips discovery)")
	fetchCmd.Flags().String("output-dir", "", "directory for the downloaded workbook")
	fetchCmd.Flags().Bool("no-discover", false, "disable link discovery, use the default URL")
	fetchCmd.Flags().Bool("verify", false, "verify the download opens as a workbook")
	fetchCmd.Flags().Bool("extract", false, "extract facility records after downloading")
	fetchCmd.Flags().Bool("progress", true, "show a download progress bar")
}
