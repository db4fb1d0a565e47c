package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/collateral"
	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/pipeline"
	"github.com/spigell/fundraiser/internal/writer"
)

var exportKinds = map[string]struct{}{
	collateral.KindCSV:    {},
	collateral.KindXLSX:   {},
	collateral.KindPDF:    {},
	collateral.KindNotion: {},
}

type GenerateRequest struct {
	Brief investor.Brief `json:"brief"`
	TopK  int            `json:"top_k"`
	// UseLLM is accepted but ignored; emails are drafted on demand.
	UseLLM      *bool          `json:"use_llm"`
	AllowScrape bool           `json:"allow_scrape"`
	Exports     []string       `json:"exports"`
}

// MatchResponse flattens a scored match. EmailDraft stays null until an
// email is requested separately.
type MatchResponse struct {
	Investor   investor.Investor `json:"investor"`
	FitScore   float64           `json:"fit_score"`
	StageFit   float64           `json:"stage_fit"`
	SectorFit  float64           `json:"sector_fit"`
	GeoFit     float64           `json:"geo_fit"`
	Momentum   float64           `json:"momentum"`
	Rationale  string            `json:"rationale"`
	EmailDraft *string           `json:"email_draft"`
}

type GenerateResponse struct {
	Matches []MatchResponse   `json:"matches"`
	Exports map[string]string `json:"exports"`
}

type GenerateEmailRequest struct {
	Brief    investor.Brief    `json:"brief"`
	Investor investor.Investor `json:"investor"`
	UseLLM   *bool             `json:"use_llm"`
}

type GenerateEmailResponse struct {
	EmailDraft string `json:"email_draft"`
}

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.OrNop(log)}
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Generate handles POST /api/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	check := req.Brief
	check.Normalize()
	if err := check.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kinds := req.Exports
	if kinds != nil {
		kinds = make([]string, 0, len(req.Exports))
		for _, kind := range req.Exports {
			kind = strings.ToLower(strings.TrimSpace(kind))
			if _, ok := exportKinds[kind]; !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export kind: " + kind})
				return
			}
			kinds = append(kinds, kind)
		}
	}

	res := h.run(c.Request.Context(), pipeline.Request{
		Brief:       req.Brief,
		TopK:        req.TopK,
		AllowScrape: req.AllowScrape,
		Exports:     kinds,
	})

	out := GenerateResponse{
		Matches: make([]MatchResponse, 0, len(res.Matches)),
		Exports: res.Exports,
	}
	if out.Exports == nil {
		out.Exports = map[string]string{}
	}
	for _, m := range res.Matches {
		resp := MatchResponse{
			Investor:  m.Investor,
			FitScore:  m.Score.FitScore,
			StageFit:  m.Score.StageFit,
			SectorFit: m.Score.SectorFit,
			GeoFit:    m.Score.GeoFit,
			Momentum:  m.Score.Momentum,
			Rationale: m.Score.Rationale,
		}
		if m.EmailDraft != "" {
			draft := m.EmailDraft
			resp.EmailDraft = &draft
		}
		out.Matches = append(out.Matches, resp)
	}

	c.JSON(http.StatusOK, out)
}

// GenerateEmail handles POST /api/generate_email.
func (h *Handler) GenerateEmail(c *gin.Context) {
	var req GenerateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useLLM := req.UseLLM == nil || *req.UseLLM

	c.JSON(http.StatusOK, GenerateEmailResponse{
		EmailDraft: h.draft(c.Request.Context(), req, useLLM),
	})
}

// run converts a pipeline panic into an empty result.
func (h *Handler) run(ctx context.Context, req pipeline.Request) (res pipeline.Result) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("pipeline failed", zap.Any("error", r))
			res = pipeline.Result{}
		}
	}()
	return h.svc.Run(ctx, req)
}

func (h *Handler) draft(ctx context.Context, req GenerateEmailRequest, useLLM bool) (email string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("drafting email failed", zap.Any("error", r))
			email = writer.GenericFallback
		}
	}()

	email = h.svc.DraftEmail(ctx, req.Investor, nil, req.Brief, useLLM)
	if strings.TrimSpace(email) == "" {
		email = writer.GenericFallback
	}
	return email
}
