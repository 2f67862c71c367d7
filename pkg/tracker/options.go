package tracker

import (
	"context"
	"encoding/json"
	"fmt"
)

// optionsKey is the store key holding the persisted tracking options.
const optionsKey = "trackingOptions"

// Toggle names accepted by ToggleOption.
const (
	ToggleTracking = "toggle-tracking"
	ToggleDomain   = "track-domain"
	TogglePage     = "track-page"
)

// Options controls how product keys are derived and whether tracking runs
// at all. TrackDomain and TrackPage are mutually exclusive in effect: domain
// scope wins when both are set.
type Options struct {
	TrackDomain     bool `json:"trackDomain"`
	TrackPage       bool `json:"trackPage"`
	TrackingEnabled bool `json:"trackingEnabled"`
}

// DefaultOptions is the state used before anything was persisted: per-page
// tracking, enabled.
func DefaultOptions() Options {
	return Options{
		TrackDomain:     false,
		TrackPage:       true,
		TrackingEnabled: true,
	}
}

// Options returns the persisted tracking options, falling back to the
// configured defaults when nothing was stored yet.
func (t *Tracker) Options(ctx context.Context) (Options, error) {
	values, err := t.store.Get(ctx, []string{optionsKey})
	if err != nil {
		return Options{}, fmt.Errorf("failed to load tracking options: %w", err)
	}

	raw, ok := values[optionsKey]
	if !ok {
		return t.defaults, nil
	}

	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		t.logger.Warn("Discarding corrupt tracking options record", "error", err)
		return t.defaults, nil
	}
	return opts, nil
}

// SetOptions persists the given tracking options.
func (t *Tracker) SetOptions(ctx context.Context, opts Options) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to encode tracking options: %w", err)
	}
	if err := t.store.Set(ctx, map[string][]byte{optionsKey: raw}); err != nil {
		return fmt.Errorf("failed to persist tracking options: %w", err)
	}
	return nil
}

// ToggleOption flips one tracking option by name and persists the result.
// Flipping the tracking scope switches between domain and page keys: turning
// one scope on turns the other off.
func (t *Tracker) ToggleOption(ctx context.Context, name string) (Options, error) {
	opts, err := t.Options(ctx)
	if err != nil {
		return Options{}, err
	}

	switch name {
	case ToggleTracking:
		opts.TrackingEnabled = !opts.TrackingEnabled
	case ToggleDomain:
		opts.TrackDomain = !opts.TrackDomain
		opts.TrackPage = !opts.TrackDomain
	case TogglePage:
		opts.TrackPage = !opts.TrackPage
		opts.TrackDomain = !opts.TrackPage
	default:
		return Options{}, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}

	if err := t.SetOptions(ctx, opts); err != nil {
		return Options{}, err
	}

	t.logger.Info("Tracking option toggled",
		"option", name,
		"track_domain", opts.TrackDomain,
		"track_page", opts.TrackPage,
		"enabled", opts.TrackingEnabled)
	return opts, nil
}
