package conf

type Bootstrap struct {
	Server   *Server
	Briefing *Briefing
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Briefing struct {
	Search      *Search      `json:"search"`
	Llm         *LLM         `json:"llm"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Cache       *Cache       `json:"cache"`
	Features    *Features    `json:"features"`
	Http        *Outbound    `json:"http"`
}

type Search struct {
	Provider string   `json:"provider"`
	Searxng  *SearXNG `json:"searxng"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type LLM struct {
	Order  []string          `json:"order"`
	Models map[string]string `json:"models"`
	Rpm    int32             `json:"rpm"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	SearchLimit      int32 `json:"search_limit"`
	SignalIntervalMs int32 `json:"signal_interval_ms"`
}

type Cache struct {
	Ttl string `json:"ttl"`
}

type Features struct {
	EnhancedSentiment bool `json:"enhanced_sentiment"`
}

type Outbound struct {
	HomepageTimeout string `json:"homepage_timeout"`
}
