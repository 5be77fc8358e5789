package model

import "time"

// 来源可信度等级
const (
	TierOther   = 0 // 其他来源
	TierOwned   = 1 // 公司自有域名
	TierTrusted = 2 // 全局可信新闻源
)

// Mention 一条提及/新闻，来自搜索结果，仅在单次请求内存在
type Mention struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Source        string `json:"source"`        // 来源域名
	PublishedDate string `json:"publishedDate"` // RFC3339，已规范化且不晚于 now+1d
	Credibility   int    `json:"credibility"`
	Snippet       string `json:"snippet,omitempty"`
}

// CanonicalInfo 公司规范身份
type CanonicalInfo struct {
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases"`
	IndustryHint  string   `json:"industryHint,omitempty"`
	BrandTokens   []string `json:"brandTokens"`
}

// IPO 状态闭集
const (
	IPOPublic  = "Public"
	IPOPrivate = "Private"
	IPOUnknown = "Unknown"
)

// CompanyProfile 公司画像快照
type CompanyProfile struct {
	Name                string            `json:"name"`
	Domain              string            `json:"domain"`
	Description         string            `json:"description"`
	Overview            string            `json:"overview"`
	IPOStatus           string            `json:"ipoStatus"`
	Socials             map[string]string `json:"socials"`
	Industry            string            `json:"industry,omitempty"`
	FoundedYear         int               `json:"foundedYear,omitempty"`
	Headquarters        string            `json:"headquarters,omitempty"`
	HeadcountRange      string            `json:"headcountRange,omitempty"`
	EmployeeCountApprox int               `json:"employeeCountApprox,omitempty"`
	Brief               string            `json:"brief"`
	LogoURL             string            `json:"logoUrl"`
	Aliases             []string          `json:"aliases,omitempty"`
	LastUpdated         time.Time         `json:"lastUpdated"`
}

// CompanyDetails 阶段 2 的结构化公司字段
type CompanyDetails struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Industry      string            `json:"industry,omitempty"`
	Founded       string            `json:"founded,omitempty"`
	Headquarters  string            `json:"headquarters,omitempty"`
	Employees     string            `json:"employees,omitempty"`
	Funding       string            `json:"funding,omitempty"`
	BusinessModel string            `json:"businessModel,omitempty"`
	Products      []string          `json:"products,omitempty"`
	Socials       map[string]string `json:"socials,omitempty"`
}

// Leader 创始人或高管
type Leader struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Background string `json:"background,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
	Confidence string `json:"confidence"` // high / medium / low
	Source     string `json:"source,omitempty"`
}

// Competitor 竞争对手
type Competitor struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Reason string `json:"reason,omitempty"`
}

// NewsItem 经过打分的新闻条目
type NewsItem struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Source        string  `json:"source"`
	PublishedDate string  `json:"publishedDate"`
	Credibility   int     `json:"credibility"`
	Score         float64 `json:"score"`
	Competitor    string  `json:"competitor,omitempty"`
}

// HistoricalPoint 每日情绪点
type HistoricalPoint struct {
	Date      string `json:"date"`
	Sentiment int    `json:"sentiment"`
	Mentions  int    `json:"mentions"`
}

// 趋势方向
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// 数据质量
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// SentimentBreakdown 增强情绪的分项
type SentimentBreakdown struct {
	SourceCredibility int    `json:"sourceCredibility"`
	RecencyWeight     int    `json:"recencyWeight"`
	VolumeScore       int    `json:"volumeScore"`
	LanguageIntensity int    `json:"languageIntensity"`
	EventImpact       int    `json:"eventImpact"`
	TrendDirection    string `json:"trendDirection"`
}

// EnhancedSentimentAnalysis 多因素情绪分析
type EnhancedSentimentAnalysis struct {
	OverallScore int                `json:"overallScore"`
	Confidence   int                `json:"confidence"`
	Breakdown    SentimentBreakdown `json:"breakdown"`
	Factors      []string           `json:"factors"`
	DataQuality  string             `json:"dataQuality"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}

// BenchmarkRow 每个实体一行，每次请求重建
type BenchmarkRow struct {
	Domain                  string                     `json:"domain"`
	Name                    string                     `json:"name,omitempty"`
	NarrativeMomentum       int                        `json:"narrativeMomentum"`
	SentimentScore          int                        `json:"sentimentScore"`
	PulseIndex              int                        `json:"pulseIndex"`
	SentimentHistoricalData []HistoricalPoint          `json:"sentimentHistoricalData"`
	EnhancedSentiment       *EnhancedSentimentAnalysis `json:"enhancedSentiment,omitempty"`
}

// 业务事件类型
const (
	EventFunding     = "funding"
	EventLaunch      = "product_launch"
	EventAcquisition = "acquisition"
	EventLayoffs     = "layoffs"
)

// BusinessEvent 带类型的业务事件
type BusinessEvent struct {
	Type    string  `json:"type"`
	Mention Mention `json:"mention"`
}
