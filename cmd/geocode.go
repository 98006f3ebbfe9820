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

	"github.com/lockdown-systems/icewatch/internal/model"
	"github.com/lockdown-systems/icewatch/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve facility addresses to coordinates",
	Long: `Reads a facility snapshot and fills in coordinates from the persistent
geocode cache, querying the external service only for addresses never seen
before. The cache file is plain JSON; edit an entry and set its source to
"manual" to pin coordinates the service gets wrong.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "geocode"))

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		cachePath, _ := cmd.Flags().GetString("cache")
		userAgent, _ := cmd.Flags().GetString("user-agent")
		progress, _ := cmd.Flags().GetBool("progress")

		delay, _ := cmd.Flags().GetDuration("delay")
		if !cmd.Flags().Changed("delay") {
			delay = time.Duration(cfg.Geocode.DelaySecs * float64(time.Second))
		}

		if userAgent == "" {
			userAgent = cfg.Geocode.UserAgent
		}
		if userAgent == "" && cfg.Geocode.MapboxToken == "" {
			return eris.New("geocode: --user-agent is required; the lookup service's usage policy requires an identifying string on every request")
		}

		if cachePath == "" {
			cachePath = filepath.Join(filepath.Dir(input), "geocode_cache.json")
		}
		if output == "" {
			output = filepath.Join(filepath.Dir(input),
				fmt.Sprintf("facilities_geocoded_%s.json", runTimestamp()))
		}

		snap, err := model.ReadSnapshot(input)
		if err != nil {
			return eris.Wrap(err, "geocode: read snapshot")
		}

		cache, err := geocode.LoadCache(cachePath)
		if err != nil {
			return eris.Wrap(err, "geocode: load cache")
		}
		log.Info("cache loaded", zap.String("path", cachePath), zap.Int("entries", cache.Len()))

		resolver := geocode.NewResolver(
			geocodeProvider(userAgent),
			geocode.NewPacer(delay),
			geocode.WithProgress(progress),
		)

		enriched, err := resolver.Resolve(ctx, snap.Facilities, cache)
		if err != nil {
			return eris.Wrap(err, "geocode: resolve")
		}
		snap.Facilities = enriched

		if err := cache.Flush(); err != nil {
			return eris.Wrap(err, "geocode: flush cache")
		}
		if err := model.WriteSnapshot(snap, output); err != nil {
			return eris.Wrap(err, "geocode: write snapshot")
		}

		log.Info("geocoded snapshot written",
			zap.String("path", output),
			zap.Int("cache_entries", cache.Len()),
		)
		fmt.Println(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.Flags().String("input", "", "facility snapshot JSON to geocode (required)")
	geocodeCmd.Flags().String("output", "", "output path (default: facilities_geocoded_<timestamp>.json beside input)")
	geocodeCmd.Flags().String("cache", "", "geocode cache file (default: geocode_cache.json beside input)")
	geocodeCmd.Flags().Duration("delay", 2*time.Second, "minimum delay between external lookups")
	geocodeCmd.Flags().String("user-agent", "", "identifying string sent with every lookup request")
	geocodeCmd.Flags().Bool("progress", true, "show a progress bar")
	_ = geocodeCmd.MarkFlagRequired("input")
}
