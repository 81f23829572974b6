package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// Candidate 多目标模式下的一个候选排班及其目标向量
type Candidate struct {
	Result     *domain.ScheduleResult `json:"result"`
	Objectives ObjectiveVector        `json:"objectives"`
}

// MultiObjective 用不同的种子和扰动过的权重跑 N 次完整的排班流水线，
// 然后只保留 Pareto 非支配的候选
// 每个候选在自己的 goroutine 中独立计算，只读共享请求快照，没有共享可变状态
func (s *Scheduler) MultiObjective(deadline time.Time) ([]Candidate, error) {
	n := int(s.parameters.CandidateCount)
	results := make([]*Candidate, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			parameters := *s.parameters
			parameters.Algorithm = AlgorithmGreedyTabu
			parameters.Seed = s.parameters.Seed + int64(i)
			parameters.Weights = perturbWeights(s.parameters.Weights, parameters.Seed)

			sub, err := New(&parameters, s.request)
			if err != nil {
				errs[i] = err
				return
			}
			result, err := sub.greedyTabu(deadline)
			if err != nil {
				errs[i] = err
				return
			}
			result, err = sub.finalize(result)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = &Candidate{Result: result, Objectives: sub.Evaluate(result)}
		}(i)
	}
	wg.Wait()

	candidates := make([]Candidate, 0, n)
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	if len(candidates) == 0 {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return nil, fmt.Errorf("多目标模式没有生成任何候选")
	}

	return paretoFilter(candidates), nil
}

// perturbWeights 把每个权重乘以 [0.8, 1.2) 上的确定性扰动
func perturbWeights(w ObjectiveWeights, seed int64) ObjectiveWeights {
	factor := func(index int32) float64 {
		return 0.8 + 0.4*slotJitter(seed, 0, 0, index, 0)
	}
	w.Fairness *= factor(0)
	w.Balance *= factor(1)
	w.SkillQuality *= factor(2)
	w.Preference *= factor(3)
	w.Variety *= factor(4)
	return w
}

// paretoFilter 只保留不被其他候选支配的候选，返回顺序与输入一致
func paretoFilter(candidates []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for i, candidate := range candidates {
		dominated := false
		for j, other := range candidates {
			if i == j {
				continue
			}
			if other.Objectives.Dominates(candidate.Objectives) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, candidate)
		}
	}
	return kept
}
