package geocode

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/model"
)

// Resolver enriches facility records with coordinates. The cache is
// consulted first and is the single source of truth once populated: a hit,
// positive or negative, never triggers an external call, regardless of age.
// Staleness is resolved by editing the cache file, never by re-lookup.
type Resolver struct {
	provider Provider
	pacer    *Pacer
	progress bool
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithProgress shows a terminal progress bar during resolution.
func WithProgress(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.progress = enabled
	}
}

// NewResolver creates a Resolver over the given provider and pacer.
func NewResolver(provider Provider, pacer *Pacer, opts ...ResolverOption) *Resolver {
	r := &Resolver{provider: provider, pacer: pacer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns enriched copies of records. For each record: an empty
// address key skips lookup entirely; a cache hit is used as-is; a miss
// performs exactly one external lookup, stores the outcome (null
// coordinates on failure or no match) and flushes the cache before moving
// on. Misses are paced by the resolver's minimum delay; hits are not.
func (r *Resolver) Resolve(ctx context.Context, records []model.FacilityRecord, cache *Cache) ([]model.FacilityRecord, error) {
	log := zap.L().With(zap.String("provider", r.provider.Name()))

	var bar *progressbar.ProgressBar
	if r.progress {
		bar = progressbar.Default(int64(len(records)), "geocoding")
	}

	out := make([]model.FacilityRecord, len(records))
	var hits, misses int
	for i, rec := range records {
		out[i] = rec
		if bar != nil {
			_ = bar.Add(1)
		}

		key := rec.AddressKey()
		if key == "" {
			log.Warn("facility has no address, skipping lookup", zap.String("name", rec.Name))
			out[i].Latitude = nil
			out[i].Longitude = nil
			continue
		}

		entry, ok := cache.Lookup(key)
		if !ok {
			if err := r.pacer.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "geocode: pacer wait")
			}
			var err error
			entry, err = r.lookup(ctx, log, key)
			if err != nil {
				return nil, err
			}
			misses++
			cache.Store(key, entry)
			if err := cache.Flush(); err != nil {
				return nil, err
			}
		} else {
			hits++
			log.Debug("geocode cache hit",
				zap.String("key", key),
				zap.Bool("resolved", entry.Resolved()),
			)
		}

		out[i].Latitude = copyFloat(entry.Latitude)
		out[i].Longitude = copyFloat(entry.Longitude)
	}

	log.Info("geocode resolution complete",
		zap.Int("records", len(records)),
		zap.Int("cache_hits", hits),
		zap.Int("lookups", misses),
	)
	return out, nil
}

// lookup performs one external call. Transient failures and empty results
// both become negative entries so the address is not re-attempted on later
// runs; only context cancellation aborts the batch.
func (r *Resolver) lookup(ctx context.Context, log *zap.Logger, query string) (Entry, error) {
	res, err := r.provider.Geocode(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return Entry{}, eris.Wrap(ctx.Err(), "geocode: resolve cancelled")
		}
		log.Warn("geocode lookup failed, caching negative result",
			zap.String("query", query),
			zap.Error(err),
		)
		return Entry{Source: SourceAPI}, nil
	}
	if !res.Matched {
		log.Info("no geocode match", zap.String("query", query))
		return Entry{Source: SourceAPI}, nil
	}

	lat, lon := res.Latitude, res.Longitude
	return Entry{Latitude: &lat, Longitude: &lon, Source: SourceAPI}, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
