package briefing

import "github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"

// 事件名，按发送顺序排列
const (
	EventCanonical      = "canonical"
	EventOverview       = "overview"
	EventProfile        = "profile"
	EventFounders       = "founders"
	EventLeadership     = "leadership"
	EventSocials        = "socials"
	EventCompetitors    = "competitors"
	EventCompanyNews    = "company-news"
	EventCompetitorNews = "competitor-news"
	EventSentiment      = "sentiment"
	EventSummary        = "summary"
	EventDone           = "done"
	EventError          = "error"
)

// Event 一条带名称的流式事件，Data 会被序列化为 JSON
type Event struct {
	Name string
	Data any
}

// OverviewPayload overview 事件
type OverviewPayload struct {
	Overview string               `json:"overview"`
	Profile  model.CompanyProfile `json:"profile"`
}

// SentimentPayload sentiment 事件
type SentimentPayload struct {
	Rows []model.BenchmarkRow `json:"rows"`
}

// 摘要来源
const (
	SummaryFromModel    = "model"
	SummaryFromTemplate = "fallback"
)

// SummaryPayload summary 事件
type SummaryPayload struct {
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// DonePayload done 事件
type DonePayload struct {
	ElapsedMs int64 `json:"elapsedMs"`
}

// ErrorPayload error 事件
type ErrorPayload struct {
	Message string `json:"message"`
}
