package search

import (
	"context"
	"errors"
)

// ErrMissingAPIKey 搜索提供方需要密钥但请求未提供
var ErrMissingAPIKey = errors.New("search: api key is missing")

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// 搜索类型
const (
	TypeAuto    = "auto"
	TypeNeural  = "neural"
	TypeKeyword = "keyword"
)

// 话题
const (
	TopicNews    = "news"
	TopicGeneral = "general"
)

// Request 通用搜索请求
type Request struct {
	Query             string
	Topic             string // "news" or "general"
	Type              string // auto / neural / keyword，不支持的提供方忽略
	MaxResults        int
	IncludeRawContent bool
	StartDate         string // Format: YYYY-MM-DD
	EndDate           string // Format: YYYY-MM-DD
	IncludeDomains    []string
	ExcludeDomains    []string
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	Score         float64
	PublishedDate string
	Domain        string // 可能为空，由调用方从 URL 推导
}
