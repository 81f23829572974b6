package scheduler

import (
	"fmt"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

type Algorithm string

const (
	AlgorithmGreedy         Algorithm = "greedy"
	AlgorithmFeasibility    Algorithm = "feasibility"
	AlgorithmGreedyTabu     Algorithm = "greedy-tabu"
	AlgorithmMultiObjective Algorithm = "multi-objective"
	AlgorithmMaxMatching    Algorithm = "max-matching"
)

var allAlgorithms = []Algorithm{
	AlgorithmGreedy,
	AlgorithmFeasibility,
	AlgorithmGreedyTabu,
	AlgorithmMultiObjective,
	AlgorithmMaxMatching,
}

// ObjectiveWeights 软目标权重
// Fairness 和 Balance 是越小越好的目标，在加权求和时取负
type ObjectiveWeights struct {
	Fairness     float64 `json:"fairness"`
	Balance      float64 `json:"balance"`
	SkillQuality float64 `json:"skillQuality"`
	Preference   float64 `json:"preference"`
	Variety      float64 `json:"variety"`
}

// Parameters 排班引擎参数
// 所有随机性都来源于 Seed，相同的请求和 Seed 保证产生完全相同的结果
type Parameters struct {
	Algorithm                Algorithm        `json:"algorithm"`
	StrictSkillMatch         bool             `json:"strictSkillMatch"`
	RespectLocked            bool             `json:"respectLocked"`
	RespectPinned            bool             `json:"respectPinned"`
	FlexCoversRegular        bool             `json:"flexCoversRegular"`
	MaxConsecutiveDaysOnTask int32            `json:"maxConsecutiveDaysOnTask"` // 0 表示不限制
	AllowConsecutiveHeavy    bool             `json:"allowConsecutiveHeavy"`
	MaxIterations            int32            `json:"maxIterations"`
	TimeBudgetMillis         int64            `json:"timeBudgetMillis"` // 0 表示不限时
	TabuListSize             int32            `json:"tabuListSize"`
	CandidateCount           int32            `json:"candidateCount"` // 多目标模式下生成的候选数量
	Weights                  ObjectiveWeights `json:"weights"`
	Seed                     int64            `json:"seed"`
}

func DefaultParameters() *Parameters {
	return &Parameters{
		Algorithm:             AlgorithmGreedyTabu,
		StrictSkillMatch:      true,
		RespectLocked:         true,
		RespectPinned:         true,
		FlexCoversRegular:     true,
		AllowConsecutiveHeavy: true,
		MaxIterations:         200,
		TimeBudgetMillis:      3000,
		TabuListSize:          32,
		CandidateCount:        5,
		Weights: ObjectiveWeights{
			Fairness:     1.0,
			Balance:      0.5,
			SkillQuality: 1.0,
			Preference:   1.0,
			Variety:      0.3,
		},
	}
}

// Validate 在任何搜索开始之前校验参数是否合法
func (p *Parameters) Validate() error {
	found := false
	for _, algorithm := range allAlgorithms {
		if p.Algorithm == algorithm {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: 未知的算法 %q", ErrConfiguration, p.Algorithm)
	}
	if p.MaxConsecutiveDaysOnTask < 0 {
		return fmt.Errorf("%w: maxConsecutiveDaysOnTask 不能为负数", ErrConfiguration)
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("%w: maxIterations 不能为负数", ErrConfiguration)
	}
	if p.TimeBudgetMillis < 0 {
		return fmt.Errorf("%w: timeBudgetMillis 不能为负数", ErrConfiguration)
	}
	if p.TabuListSize < 0 {
		return fmt.Errorf("%w: tabuListSize 不能为负数", ErrConfiguration)
	}
	if p.Algorithm == AlgorithmMultiObjective && p.CandidateCount < 1 {
		return fmt.Errorf("%w: 多目标模式下 candidateCount 必须大于 0", ErrConfiguration)
	}
	return nil
}

// slot 表示一个需要填充的人数单位，即 (task, day, type) 中的一个名额
type slot struct {
	taskID int64
	day    int32
	opType domain.OperatorType
	index  int32 // 同一 (task, day, type) 中的序号
}
