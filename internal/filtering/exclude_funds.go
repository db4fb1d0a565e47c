package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
)

type excludeFundsFilter struct {
	funds []string
}

// NewExcludeFunds creates a filter that removes investors by fund names configured in the config.
func NewExcludeFunds() Filter {
	return &excludeFundsFilter{}
}

func (f *excludeFundsFilter) Name() string { return "exclude_funds" }

func (f *excludeFundsFilter) Disable(string) {}

func (f *excludeFundsFilter) IsEnabled() bool { return true }

func (f *excludeFundsFilter) Validate(cfg *Config) error {
	f.funds = nil
	if cfg != nil {
		f.funds = append(f.funds, cfg.ExcludeFunds...)
	}
	return nil
}

func (f *excludeFundsFilter) Apply(_ context.Context, deps Deps, v *investor.Investors) (*investor.Investors, Step, error) {
	initial := v.Len()
	if len(f.funds) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.ExcludeFunds(f.funds)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding investors by fund",
			zap.Strings("excluded_funds", f.funds),
			zap.Int("excluded", len(excluded)),
			zap.Int("investors_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *excludeFundsFilter) Status() Status {
	details := map[string]string{}
	if len(f.funds) > 0 {
		details["funds"] = strings.Join(f.funds, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
