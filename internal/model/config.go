package model

import "time"

// Config is the full runtime configuration, resolved from flags, environment
// (GRADECHECK_*), config file and defaults in that priority order.
type Config struct {
	Thresholds  ThresholdConfig   `yaml:"thresholds" mapstructure:"thresholds"`
	Weights     WeightConfig      `yaml:"weights" mapstructure:"weights"`
	Normalizer  NormalizerConfig  `yaml:"normalizer" mapstructure:"normalizer"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Collector   CollectorConfig   `yaml:"collector" mapstructure:"collector"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
}

// ThresholdConfig holds the verdict cutoffs and matcher tolerances.
type ThresholdConfig struct {
	Correct        float64 `yaml:"correct" mapstructure:"correct"`                   // combined score >= Correct -> 正确
	Partial        float64 `yaml:"partial" mapstructure:"partial"`                   // combined score >= Partial -> 部分正确
	ListMatch      float64 `yaml:"list_match" mapstructure:"list_match"`             // token-set Jaccard acceptance
	NumericTolRel  float64 `yaml:"numeric_tol_rel" mapstructure:"numeric_tol_rel"`   // relative numeric tolerance
	NumericTolAbs  float64 `yaml:"numeric_tol_abs" mapstructure:"numeric_tol_abs"`   // absolute numeric tolerance
	OrderRatioFlag float64 `yaml:"order_ratio_flag" mapstructure:"order_ratio_flag"` // seq ratio below this flags 顺序差异
}

// WeightConfig holds the weighted-combination coefficients. They should sum
// to 1.0 so the combined score stays in [0,1].
type WeightConfig struct {
	SeqRatio     float64 `yaml:"seq_ratio" mapstructure:"seq_ratio"`
	TokenJaccard float64 `yaml:"token_jaccard" mapstructure:"token_jaccard"`
	Numeric      float64 `yaml:"numeric" mapstructure:"numeric"`
	ListJaccard  float64 `yaml:"list_jaccard" mapstructure:"list_jaccard"`
}

// NormalizerConfig holds the declarative rule tables for text normalization.
type NormalizerConfig struct {
	// FillerPhrases are removed verbatim from answers before comparison.
	FillerPhrases []string `yaml:"filler_phrases" mapstructure:"filler_phrases"`
}

// ConcurrencyConfig controls batch evaluation parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// CollectorConfig configures the browser-driven answer collector.
type CollectorConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`         // chat app web UI
	APIBase     string        `yaml:"api_base" mapstructure:"api_base"`         // REST history endpoint base
	Username    string        `yaml:"username" mapstructure:"username"`
	Password    string        `yaml:"password" mapstructure:"password"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`           // per-question timeout
	PollRetries int           `yaml:"poll_retries" mapstructure:"poll_retries"` // history endpoint attempts
	PollDelay   time.Duration `yaml:"poll_delay" mapstructure:"poll_delay"`     // delay between attempts
	RatePerSec  float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"` // API request pacing
	Headless    bool          `yaml:"headless" mapstructure:"headless"`
}

// LLMConfig configures the optional report commentary. The commentary is
// generated after scoring and never affects verdicts.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultFillerPhrases are boilerplate fragments the chat agent wraps around
// factual answers; they carry no information and are stripped before scoring.
var DefaultFillerPhrases = []string{
	"查询结果显示",
	"任务执行完成",
	"分别为",
	"如下",
	"的订单数量为",
	"其得分为",
}

// DefaultConfig returns the tuned defaults for analytics Q&A grading.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			Correct:        0.60,
			Partial:        0.40,
			ListMatch:      0.7,
			NumericTolRel:  1e-3,
			NumericTolAbs:  1e-2,
			OrderRatioFlag: 0.8,
		},
		Weights: WeightConfig{
			SeqRatio:     0.20,
			TokenJaccard: 0.15,
			Numeric:      0.45,
			ListJaccard:  0.20,
		},
		Normalizer: NormalizerConfig{
			FillerPhrases: DefaultFillerPhrases,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir: "./eval_output",
		},
		Collector: CollectorConfig{
			BaseURL:     "http://localhost:8002",
			APIBase:     "http://localhost:8002",
			Timeout:     3 * time.Minute,
			PollRetries: 3,
			PollDelay:   5 * time.Second,
			RatePerSec:  2,
			Headless:    true,
		},
		LLM: LLMConfig{
			Provider:  "",
			MaxTokens: 1000,
		},
	}
}
