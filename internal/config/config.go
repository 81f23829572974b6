package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Engine struct {
		Algorithm                string  `env:"ALGORITHM" envDefault:"greedy-tabu"`
		StrictSkillMatch         bool    `env:"STRICT_SKILL_MATCH" envDefault:"true"`
		FlexCoversRegular        bool    `env:"FLEX_COVERS_REGULAR" envDefault:"true"`
		AllowConsecutiveHeavy    bool    `env:"ALLOW_CONSECUTIVE_HEAVY" envDefault:"true"`
		MaxConsecutiveDaysOnTask int     `env:"MAX_CONSECUTIVE_DAYS_ON_TASK" envDefault:"0"`
		MaxIterations            int     `env:"MAX_ITERATIONS" envDefault:"200"`
		TimeBudget               int     `env:"TIME_BUDGET" envDefault:"3000"` // 毫秒
		TabuListSize             int     `env:"TABU_LIST_SIZE" envDefault:"32"`
		CandidateCount           int     `env:"CANDIDATE_COUNT" envDefault:"5"`
		FairnessWeight           float64 `env:"FAIRNESS_WEIGHT" envDefault:"1.0"`
		BalanceWeight            float64 `env:"BALANCE_WEIGHT" envDefault:"0.5"`
		SkillQualityWeight       float64 `env:"SKILL_QUALITY_WEIGHT" envDefault:"1.0"`
		PreferenceWeight         float64 `env:"PREFERENCE_WEIGHT" envDefault:"1.0"`
		VarietyWeight            float64 `env:"VARIETY_WEIGHT" envDefault:"0.3"`
		Seed                     int64   `env:"SEED" envDefault:"0"`
	} `envPrefix:"ENGINE_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
