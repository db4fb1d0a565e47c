package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
)

type requireURLsFilter struct {
	active bool
}

// NewRequireURLs creates a filter that removes investors without any links.
// It only drops candidates when the config asks for it.
func NewRequireURLs() Filter {
	return &requireURLsFilter{}
}

func (f *requireURLsFilter) Name() string { return "require_urls" }

func (f *requireURLsFilter) Disable(string) {}

func (f *requireURLsFilter) IsEnabled() bool { return true }

func (f *requireURLsFilter) Validate(cfg *Config) error {
	f.active = cfg != nil && cfg.RequireURLs
	return nil
}

func (f *requireURLsFilter) Apply(_ context.Context, deps Deps, v *investor.Investors) (*investor.Investors, Step, error) {
	initial := v.Len()
	if !f.active {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.ExcludeWithoutURLs()
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding investors without links. There is nothing to research or cite",
			zap.Int("excluded", len(excluded)),
			zap.Int("investors_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *requireURLsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"required": strconv.FormatBool(f.active)},
	}
}
