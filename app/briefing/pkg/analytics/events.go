package analytics

import (
	"regexp"

	"github.com/iWorld-y/briefing_radar/app/briefing/pkg/model"
)

var eventPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{model.EventLayoffs, regexp.MustCompile(`(?i)\b(layoffs?|lays off|job cuts|cuts jobs|redundanc(y|ies)|workforce reduction)\b`)},
	{model.EventAcquisition, regexp.MustCompile(`(?i)\b(acquires?|acquired|acquisitions?|buys|merger|merges?)\b`)},
	{model.EventFunding, regexp.MustCompile(`(?i)\b(raises?|raised|funding|series [a-e]|seed round|investment round|valuation)\b`)},
	{model.EventLaunch, regexp.MustCompile(`(?i)\b(launch(es|ed)?|unveils?|introduces?|releases?|rolls out|debuts?)\b`)},
}

// eventWeights 业务事件对情绪的影响
var eventWeights = map[string]int{
	model.EventFunding:     15,
	model.EventLaunch:      10,
	model.EventAcquisition: 8,
	model.EventLayoffs:     -20,
}

// ClassifyEvent 根据标题判断业务事件类型；裁员优先匹配
func ClassifyEvent(title string) (string, bool) {
	for _, p := range eventPatterns {
		if p.re.MatchString(title) {
			return p.kind, true
		}
	}
	return "", false
}

// EventsFromMentions 从标题中识别业务事件
func EventsFromMentions(mentions []model.Mention) []model.BusinessEvent {
	var out []model.BusinessEvent
	for _, m := range mentions {
		if kind, ok := ClassifyEvent(m.Title); ok {
			out = append(out, model.BusinessEvent{Type: kind, Mention: m})
		}
	}
	return out
}
