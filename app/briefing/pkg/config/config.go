package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Features    FeatureConfig     `yaml:"features"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"` // exa / tavily / searxng
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LLMConfig LLM 相关配置。密钥随请求传入，这里只保存偏好
type LLMConfig struct {
	Order  []string          `yaml:"order"`  // 默认的提供方优先级
	Models map[string]string `yaml:"models"` // 提供方 -> 模型覆盖
	RPM    int               `yaml:"rpm"`    // 0 表示不限速
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	SearchLimit      int `yaml:"search_limit"`
	SignalIntervalMS int `yaml:"signal_interval_ms"`
}

// CacheConfig 进程内缓存配置
type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

// FeatureConfig 功能开关
type FeatureConfig struct {
	EnhancedSentiment bool `yaml:"enhanced_sentiment"`
}

// HTTPConfig 出站 HTTP 配置
type HTTPConfig struct {
	HomepageTimeout string `yaml:"homepage_timeout"`
}

const (
	DefaultSearchProvider  = "exa"
	DefaultSearchLimit     = 5
	DefaultSignalInterval  = 250 * time.Millisecond
	DefaultCacheTTL        = time.Hour
	DefaultHomepageTimeout = 5 * time.Second
)

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchProvider 返回配置的搜索提供方，未配置时为 exa
func (c *Config) SearchProvider() string {
	if c.Search.Provider == "" {
		return DefaultSearchProvider
	}
	return c.Search.Provider
}

// SearchLimit 搜索并发上限
func (c *Config) SearchLimit() int {
	if c.Concurrency.SearchLimit <= 0 {
		return DefaultSearchLimit
	}
	return c.Concurrency.SearchLimit
}

// SignalInterval 信号查询之间的固定间隔
func (c *Config) SignalInterval() time.Duration {
	if c.Concurrency.SignalIntervalMS <= 0 {
		return DefaultSignalInterval
	}
	return time.Duration(c.Concurrency.SignalIntervalMS) * time.Millisecond
}

// CacheTTL 缓存有效期
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, DefaultCacheTTL)
}

// HomepageTimeout 抓取官网元信息的超时
func (c *Config) HomepageTimeout() time.Duration {
	return parseDuration(c.HTTP.HomepageTimeout, DefaultHomepageTimeout)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
