package ai

import (
	"context"

	"github.com/spigell/fundraiser/internal/investor"
)

// DraftRequest carries everything an outreach drafting provider may use.
type DraftRequest struct {
	InvestorName string
	Fund         string
	Rationale    string
	Brief        investor.Brief
}

// Drafter produces outreach email text. Implementations may fail; callers
// are expected to fall back to a template.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}
