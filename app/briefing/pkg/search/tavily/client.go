package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/search"
)

const (
	defaultBaseURL = "https://api.tavily.com/search"
	// Tavily 单次最多返回 20 条
	maxResults = 20
)

// Client Tavily API 客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 Tavily 客户端
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, client: http.DefaultClient}
}

// WithBaseURL 替换接口地址
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

var _ search.Searcher = (*Client)(nil)

type query struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	Topic             string   `json:"topic"`
	MaxResults        int      `json:"max_results"`
	IncludeRawContent bool     `json:"include_raw_content,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
}

type hit struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// toQuery 把通用请求转换为 Tavily 参数；neural 检索对应 advanced 深度
func toQuery(req *search.Request) query {
	q := query{
		Query:             req.Query,
		SearchDepth:       "basic",
		Topic:             req.Topic,
		MaxResults:        min(max(req.MaxResults, 0), maxResults),
		IncludeRawContent: req.IncludeRawContent,
		IncludeDomains:    req.IncludeDomains,
		ExcludeDomains:    req.ExcludeDomains,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
	}
	if req.Type == search.TypeNeural {
		q.SearchDepth = "advanced"
	}
	if q.MaxResults == 0 {
		q.MaxResults = 5
	}
	if q.Topic == "" {
		q.Topic = search.TopicGeneral
	}
	return q
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	payload, err := json.Marshal(toQuery(req))
	if err != nil {
		return nil, fmt.Errorf("tavily: encode query: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("tavily: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Results []hit `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	out := &search.Response{Results: make([]search.Result, 0, len(decoded.Results))}
	for _, h := range decoded.Results {
		r := search.Result{
			Title:         h.Title,
			URL:           h.URL,
			Content:       h.Content,
			RawContent:    h.RawContent,
			Score:         h.Score,
			PublishedDate: h.PublishedDate,
		}
		if u, err := url.Parse(h.URL); err == nil {
			r.Domain = strings.TrimPrefix(u.Hostname(), "www.")
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}
