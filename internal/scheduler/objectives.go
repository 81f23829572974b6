package scheduler

import (
	"math"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// ObjectiveVector 一个排班结果在各软目标上的得分
// Fairness 和 Balance 越小越好，其余越大越好
type ObjectiveVector struct {
	Fairness     float64 `json:"fairness"`     // 工作量标准差
	Balance      float64 `json:"balance"`      // 最多和最少任务数之差
	SkillQuality float64 `json:"skillQuality"` // 技能匹配比例
	Preference   float64 `json:"preference"`   // 偏好满足程度
	Variety      float64 `json:"variety"`      // 任务多样性
}

// Dominates 判断 v 是否 Pareto 支配 other：
// 每个目标都不劣于 other，且至少一个目标严格更优
func (v ObjectiveVector) Dominates(other ObjectiveVector) bool {
	notWorse := v.Fairness <= other.Fairness &&
		v.Balance <= other.Balance &&
		v.SkillQuality >= other.SkillQuality &&
		v.Preference >= other.Preference &&
		v.Variety >= other.Variety
	if !notWorse {
		return false
	}
	return v.Fairness < other.Fairness ||
		v.Balance < other.Balance ||
		v.SkillQuality > other.SkillQuality ||
		v.Preference > other.Preference ||
		v.Variety > other.Variety
}

// Evaluate 计算排班结果的目标向量
func (s *Scheduler) Evaluate(result *domain.ScheduleResult) ObjectiveVector {
	return s.evaluateAssignment(s.assignmentFromResult(result))
}

func (s *Scheduler) evaluateAssignment(assignment map[int32]map[int64]int64) ObjectiveVector {
	workload := make(map[int64]float64)
	distinctTasks := make(map[int64]map[int64]bool)

	total := 0.0
	skillMatched := 0.0
	preference := 0.0

	for _, day := range s.request.Days {
		for opID, taskID := range assignment[day] {
			op := s.operatorMap[opID]
			task := s.tasks[taskID]
			if op == nil || task == nil {
				continue
			}

			total++
			workload[opID]++
			if _, exists := distinctTasks[opID]; !exists {
				distinctTasks[opID] = make(map[int64]bool)
			}
			distinctTasks[opID][taskID] = true

			if op.HasSkill(task.RequiredSkill) {
				skillMatched++
			}
			if rank := op.PreferenceRank(taskID); rank >= 0 {
				preference += 1.0 / float64(1+rank)
			}
		}
	}

	vector := ObjectiveVector{SkillQuality: 1, Preference: 0, Variety: 1}
	if len(s.operators) == 0 {
		return vector
	}

	// 公平性：所有在岗操作员（包括没排到班的）工作量的标准差
	mean := 0.0
	for _, op := range s.operators {
		mean += workload[op.ID]
	}
	mean /= float64(len(s.operators))

	variance := 0.0
	minLoad := math.MaxFloat64
	maxLoad := 0.0
	for _, op := range s.operators {
		load := workload[op.ID]
		variance += math.Pow(load-mean, 2)
		minLoad = math.Min(minLoad, load)
		maxLoad = math.Max(maxLoad, load)
	}
	variance /= float64(len(s.operators))

	vector.Fairness = math.Sqrt(variance)
	vector.Balance = maxLoad - minLoad

	if total > 0 {
		vector.SkillQuality = skillMatched / total
		vector.Preference = preference / total

		// 多样性：平均每个被排班的操作员承担的不同任务数占其任务总数的比例
		variety := 0.0
		assigned := 0.0
		for opID, tasks := range distinctTasks {
			variety += float64(len(tasks)) / workload[opID]
			assigned++
		}
		vector.Variety = variety / assigned
	}

	return vector
}

// ScalarScore 把目标向量按权重折算成单个分数，越大越好
func (s *Scheduler) ScalarScore(v ObjectiveVector) float64 {
	w := s.parameters.Weights
	return -w.Fairness*v.Fairness -
		w.Balance*v.Balance +
		w.SkillQuality*v.SkillQuality +
		w.Preference*v.Preference +
		w.Variety*v.Variety
}
