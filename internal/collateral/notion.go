package collateral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/logger"
	"github.com/spigell/fundraiser/internal/scoring"
)

const (
	notionAPIURL     = "https://api.notion.com/v1"
	notionVersion    = "2022-06-28"
	notionMaxMatches = 25
)

// NotionClient publishes the target list as a page under a parent page.
type NotionClient struct {
	token      string
	parentID   string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func NewNotionClient(token, parentID string, log *zap.Logger) *NotionClient {
	return &NotionClient{
		token:    token,
		parentID: parentID,
		logger:   logger.OrNop(log),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		APIURL: notionAPIURL,
	}
}

// Configured reports whether both the token and the parent page are set.
func (c *NotionClient) Configured() bool {
	return c != nil && c.token != "" && c.parentID != ""
}

type notionText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type notionRichText struct {
	RichText []notionText `json:"rich_text"`
}

type notionBlock struct {
	Object    string          `json:"object"`
	Type      string          `json:"type"`
	Paragraph *notionRichText `json:"paragraph,omitempty"`
	Heading2  *notionRichText `json:"heading_2,omitempty"`
}

type notionPageRequest struct {
	Parent struct {
		Type   string `json:"type"`
		PageID string `json:"page_id"`
	} `json:"parent"`
	Properties struct {
		Title []notionText `json:"title"`
	} `json:"properties"`
	Children []notionBlock `json:"children"`
}

func text(content string) []notionText {
	t := notionText{Type: "text"}
	t.Text.Content = content
	return []notionText{t}
}

func paragraph(content string) notionBlock {
	return notionBlock{Object: "block", Type: "paragraph", Paragraph: &notionRichText{RichText: text(content)}}
}

func heading(content string) notionBlock {
	return notionBlock{Object: "block", Type: "heading_2", Heading2: &notionRichText{RichText: text(content)}}
}

// pageRequest builds the page payload for the brief and its top matches.
func (c *NotionClient) pageRequest(brief investor.Brief, matches []scoring.Match) notionPageRequest {
	var req notionPageRequest
	req.Parent.Type = "page_id"
	req.Parent.PageID = c.parentID
	req.Properties.Title = text(fmt.Sprintf("%s — Fundraising Targets", brief.Name))

	req.Children = append(req.Children,
		paragraph("One-liner: "+brief.OneLiner),
		paragraph(summaryLine(brief)),
		heading("Top Target Investors"),
	)
	for _, m := range headMatches(matches, notionMaxMatches) {
		req.Children = append(req.Children, paragraph(fmt.Sprintf("- %s — %s (score %s)",
			investorLabel(m.Investor), m.Score.Rationale, FormatScore(m.Score.FitScore))))
	}
	return req
}

// Export creates the page and returns its URL. Without credentials it does
// nothing and returns an empty URL.
func (c *NotionClient) Export(ctx context.Context, brief investor.Brief, matches []scoring.Match) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	body, err := json.Marshal(c.pageRequest(brief, matches))
	if err != nil {
		return "", fmt.Errorf("marshal notion page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/pages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s: %s", resp.Status, logger.TruncateForLog(string(data), 200))
	}

	var page struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return "", fmt.Errorf("decode notion page: %w", err)
	}
	return page.URL, nil
}
