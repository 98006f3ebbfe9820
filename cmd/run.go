package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/extract"
	"github.com/lockdown-systems/icewatch/internal/model"
	"github.com/lockdown-systems/icewatch/internal/render"
	"github.com/lockdown-systems/icewatch/pkg/geocode"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full fetch -> extract -> geocode -> render pipeline",
	Long: `Runs all four stages in sequence. A fetch failure aborts the run; a
geocode failure for a single address leaves that facility without
coordinates and continues.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "run"))

		outputDir, _ := cmd.Flags().GetString("output-dir")
		mapOutput, _ := cmd.Flags().GetString("map-output")
		userAgent, _ := cmd.Flags().GetString("user-agent")
		progress, _ := cmd.Flags().GetBool("progress")
		if outputDir == "" {
			outputDir = cfg.Fetch.OutputDir
		}
		if mapOutput == "" {
			mapOutput = cfg.Render.Output
		}
		if userAgent == "" {
			userAgent = cfg.Geocode.UserAgent
		}
		if userAgent == "" && cfg.Geocode.MapboxToken == "" {
			return eris.New("run: a geocode user agent is required (--user-agent or geocode.user_agent)")
		}

		// Fetch. Nothing downstream can run without the workbook.
		f := newFetcher(progress)
		workbookURL, err := f.DiscoverWorkbookURL(ctx, cfg.Fetch.PageURL)
		if err != nil {
			log.Warn("link discovery failed, falling back to default URL", zap.Error(err))
			workbookURL = cfg.Fetch.DefaultURL
		}
		workbookPath, sourceDate, err := f.DownloadWorkbook(ctx, workbookURL, outputDir)
		if err != nil {
			return eris.Wrap(err, "run: fetch")
		}

		// Extract.
		snap, err := extract.Extract(workbookPath, sourceDate, extractOptions())
		if err != nil {
			return eris.Wrap(err, "run: extract")
		}
		snapPath := filepath.Join(outputDir, fmt.Sprintf("ice_facilities_%s.json", runTimestamp()))
		if err := model.WriteSnapshot(snap, snapPath); err != nil {
			return eris.Wrap(err, "run: write snapshot")
		}

		// Geocode.
		cachePath := filepath.Join(outputDir, "geocode_cache.json")
		cache, err := geocode.LoadCache(cachePath)
		if err != nil {
			return eris.Wrap(err, "run: load cache")
		}
		resolver := geocode.NewResolver(
			geocodeProvider(userAgent),
			geocode.NewPacer(time.Duration(cfg.Geocode.DelaySecs*float64(time.Second))),
			geocode.WithProgress(progress),
		)
		enriched, err := resolver.Resolve(ctx, snap.Facilities, cache)
		if err != nil {
			return eris.Wrap(err, "run: geocode")
		}
		snap.Facilities = enriched
		if err := cache.Flush(); err != nil {
			return eris.Wrap(err, "run: flush cache")
		}
		geocodedPath := filepath.Join(outputDir, fmt.Sprintf("facilities_geocoded_%s.json", runTimestamp()))
		if err := model.WriteSnapshot(snap, geocodedPath); err != nil {
			return eris.Wrap(err, "run: write geocoded snapshot")
		}

		// Render.
		if err := render.Render(snap, mapOutput); err != nil {
			return eris.Wrap(err, "run: render")
		}

		log.Info("pipeline complete",
			zap.String("workbook", workbookPath),
			zap.String("snapshot", snapPath),
			zap.String("geocoded", geocodedPath),
			zap.String("map", mapOutput),
		)
		fmt.Println(mapOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("output-dir", "", "directory for workbook and snapshot files")
	runCmd.Flags().String("map-output", "", "output HTML path for the map")
	runCmd.Flags().String("user-agent", "", "identifying string sent with every geocode lookup")
	runCmd.Flags().Bool("progress", true, "show progress bars")
}
