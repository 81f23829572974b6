package scheduler

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// pinnedBonus 让固定格子的候选人在打分时几乎总是排在最前面，
// 但不会把其他候选人从域中剔除，因此固定格子不会导致无解
const pinnedBonus = 1000.0

type Scheduler struct {
	parameters  *Parameters
	request     *domain.ScheduleRequest
	operators   []*domain.Operator // 仅在岗操作员，按声明顺序
	operatorMap map[int64]*domain.Operator
	tasks       map[int64]*domain.Task
	slots       []slot
	candidates  [][]int64 // 每个槽位经过硬约束过滤后的候选操作员
	daySlots    map[int32][]int
	lockedByDay map[int32]map[int64]*int64 // day -> operatorID -> taskID（nil 表示锁定空闲）
	pinnedByDay map[int32]map[int64]int64
}

func New(parameters *Parameters, request *domain.ScheduleRequest) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if request == nil || len(request.Days) == 0 {
		return nil, fmt.Errorf("%w: 请求中没有工作日", ErrConfiguration)
	}
	for _, requirement := range request.Requirements {
		for _, tc := range requirement.Defaults {
			if tc.Count < 0 {
				return nil, fmt.Errorf("%w: 任务 %d 的人数要求不能为负数", ErrConfiguration, requirement.TaskID)
			}
		}
		for _, counts := range requirement.Overrides {
			for _, tc := range counts {
				if tc.Count < 0 {
					return nil, fmt.Errorf("%w: 任务 %d 的人数要求不能为负数", ErrConfiguration, requirement.TaskID)
				}
			}
		}
	}

	s := &Scheduler{
		parameters:  parameters,
		request:     request,
		operatorMap: make(map[int64]*domain.Operator),
		tasks:       make(map[int64]*domain.Task),
		daySlots:    make(map[int32][]int),
		lockedByDay: make(map[int32]map[int64]*int64),
		pinnedByDay: make(map[int32]map[int64]int64),
	}

	for _, task := range request.Tasks {
		s.tasks[task.ID] = task
	}

	// 只有在岗的操作员才能参与排班
	for _, op := range request.Operators {
		if op.Status != domain.OperatorStatusActive {
			continue
		}
		s.operators = append(s.operators, op)
		s.operatorMap[op.ID] = op
	}

	// 记录锁定和固定的格子
	for _, cell := range request.Cells {
		if cell.Locked && parameters.RespectLocked {
			if _, exists := s.lockedByDay[cell.Day]; !exists {
				s.lockedByDay[cell.Day] = make(map[int64]*int64)
			}
			s.lockedByDay[cell.Day][cell.OperatorID] = cell.TaskID
		}
		if cell.Pinned && !cell.Locked && cell.TaskID != nil && parameters.RespectPinned {
			if _, exists := s.pinnedByDay[cell.Day]; !exists {
				s.pinnedByDay[cell.Day] = make(map[int64]int64)
			}
			s.pinnedByDay[cell.Day][cell.OperatorID] = *cell.TaskID
		}
	}

	s.expandSlots()
	s.buildCandidates()

	return s, nil
}

// expandSlots 把人数要求展开成一个个待填充的名额
// 已经被锁定格子占用的名额不再展开
func (s *Scheduler) expandSlots() {
	for _, requirement := range s.request.Requirements {
		if s.request.IsTaskExcluded(requirement.TaskID) {
			continue
		}
		if _, exists := s.tasks[requirement.TaskID]; !exists {
			continue
		}

		for _, day := range s.request.Days {
			counts := requirement.CountsForDay(day)
			remaining := make([]domain.TypeCount, len(counts))
			copy(remaining, counts)

			// 锁定格子优先消耗与操作员类型完全一致的名额
			// 即使操作员已经不在岗，锁定格子仍然占用名额，否则名额会被重复填充
			for opID, taskID := range s.lockedByDay[day] {
				if taskID == nil || *taskID != requirement.TaskID {
					continue
				}
				op := s.operatorMap[opID]
				if op == nil {
					op = s.request.OperatorByID(opID)
				}
				if op == nil {
					continue
				}
				consumed := false
				for i := range remaining {
					if remaining[i].Count > 0 && remaining[i].Type == op.Type {
						remaining[i].Count--
						consumed = true
						break
					}
				}
				if !consumed {
					for i := range remaining {
						if remaining[i].Count > 0 && s.typeAdmits(remaining[i].Type, op.Type) {
							remaining[i].Count--
							break
						}
					}
				}
			}

			for _, tc := range remaining {
				for i := int32(0); i < tc.Count; i++ {
					s.slots = append(s.slots, slot{
						taskID: requirement.TaskID,
						day:    day,
						opType: tc.Type,
						index:  i,
					})
				}
			}
		}
	}

	for i, sl := range s.slots {
		s.daySlots[sl.day] = append(s.daySlots[sl.day], i)
	}
}

// buildCandidates 为每个槽位计算通过硬约束过滤的候选操作员
func (s *Scheduler) buildCandidates() {
	s.candidates = make([][]int64, len(s.slots))
	for i, sl := range s.slots {
		task := s.tasks[sl.taskID]
		candidates := make([]int64, 0)
		for _, op := range s.operators {
			if !s.eligible(op, task, sl.opType, sl.day) {
				continue
			}
			candidates = append(candidates, op.ID)
		}
		s.candidates[i] = candidates
	}
}

// typeAdmits 判断名额类型是否接受某个操作员类型
func (s *Scheduler) typeAdmits(line domain.OperatorType, opType domain.OperatorType) bool {
	if line == opType {
		return true
	}
	// 机动工可以顶替正式工的名额
	return s.parameters.FlexCoversRegular && line == domain.OperatorTypeRegular && opType == domain.OperatorTypeFlex
}

// eligible 检查操作员是否能承担某个槽位（硬约束）
func (s *Scheduler) eligible(op *domain.Operator, task *domain.Task, opType domain.OperatorType, day int32) bool {
	if op.Status != domain.OperatorStatusActive {
		return false
	}
	if !op.IsAvailable(day) {
		return false
	}
	if task.CoordinatorOnly && op.Type != domain.OperatorTypeCoordinator {
		return false
	}
	if s.parameters.StrictSkillMatch && !op.HasSkill(task.RequiredSkill) {
		return false
	}
	if !s.typeAdmits(opType, op.Type) {
		return false
	}
	// 当天已经被锁定（无论锁定到哪个任务还是锁定空闲）的操作员不再参与分配
	if _, locked := s.lockedByDay[day][op.ID]; locked {
		return false
	}
	return true
}

// candidateScore 计算候选操作员承担某个槽位的打分
// 打分只用于排序候选尝试顺序，不影响硬约束
func (s *Scheduler) candidateScore(sl slot, opID int64, workload int32) float64 {
	op := s.operatorMap[opID]
	task := s.tasks[sl.taskID]
	weights := s.parameters.Weights

	score := 0.0
	if rank := op.PreferenceRank(sl.taskID); rank >= 0 {
		score += weights.Preference / float64(1+rank)
	}
	if op.HasSkill(task.RequiredSkill) {
		score += weights.SkillQuality
	}
	score -= weights.Fairness * float64(workload)
	if taskID, pinned := s.pinnedByDay[sl.day][opID]; pinned && taskID == sl.taskID {
		score += pinnedBonus
	}

	// 确定性扰动，用于在打分接近的候选之间制造多样性
	return score + 0.01*slotJitter(s.parameters.Seed, sl.taskID, sl.day, sl.index, opID)
}

// initialAssignment 返回只包含锁定格子的排班表
func (s *Scheduler) initialAssignment() map[int32]map[int64]int64 {
	assignment := make(map[int32]map[int64]int64)
	for day, locked := range s.lockedByDay {
		for opID, taskID := range locked {
			if taskID == nil {
				continue
			}
			if _, exists := assignment[day]; !exists {
				assignment[day] = make(map[int64]int64)
			}
			assignment[day][opID] = *taskID
		}
	}
	return assignment
}

// buildResult 把内部排班表转换成返回给调用方的结果
// 锁定格子原样保留，其他格子由引擎生成
func (s *Scheduler) buildResult(assignment map[int32]map[int64]int64, warnings []domain.ScheduleWarning) *domain.ScheduleResult {
	cells := make([]domain.AssignmentCell, 0)
	for _, cell := range s.request.Cells {
		if cell.Locked && s.parameters.RespectLocked {
			cells = append(cells, cell)
		}
	}

	for day, ops := range assignment {
		for opID, taskID := range ops {
			if _, locked := s.lockedByDay[day][opID]; locked {
				continue
			}
			id := taskID
			pinned := false
			if pinnedTask, exists := s.pinnedByDay[day][opID]; exists && pinnedTask == taskID {
				pinned = true
			}
			cells = append(cells, domain.AssignmentCell{
				Day:        day,
				OperatorID: opID,
				TaskID:     &id,
				Pinned:     pinned,
			})
		}
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Day != cells[j].Day {
			return cells[i].Day < cells[j].Day
		}
		return cells[i].OperatorID < cells[j].OperatorID
	})

	if warnings == nil {
		warnings = make([]domain.ScheduleWarning, 0)
	}
	return &domain.ScheduleResult{Cells: cells, Warnings: warnings}
}

// assignmentFromResult 把结果转换回内部排班表，供局部搜索使用
func (s *Scheduler) assignmentFromResult(result *domain.ScheduleResult) map[int32]map[int64]int64 {
	assignment := make(map[int32]map[int64]int64)
	for _, cell := range result.Cells {
		if cell.TaskID == nil {
			continue
		}
		if _, exists := assignment[cell.Day]; !exists {
			assignment[cell.Day] = make(map[int64]int64)
		}
		assignment[cell.Day][cell.OperatorID] = *cell.TaskID
	}
	return assignment
}

func (s *Scheduler) deadline() time.Time {
	if s.parameters.TimeBudgetMillis == 0 {
		// 不限时，给一个足够远的截止时间
		return time.Now().Add(24 * time.Hour)
	}
	return time.Now().Add(time.Duration(s.parameters.TimeBudgetMillis) * time.Millisecond)
}

// Schedule 按配置的算法生成单个排班结果
// 多目标模式请使用 ScheduleCandidates
func (s *Scheduler) Schedule() (*domain.ScheduleResult, error) {
	deadline := s.deadline()

	var result *domain.ScheduleResult
	var err error

	switch s.parameters.Algorithm {
	case AlgorithmGreedy:
		result = s.Greedy()
	case AlgorithmMaxMatching:
		result = s.MaxMatching()
	case AlgorithmFeasibility:
		result, err = s.Solve(nil, deadline)
	case AlgorithmGreedyTabu:
		result, err = s.greedyTabu(deadline)
	case AlgorithmMultiObjective:
		return nil, fmt.Errorf("%w: 多目标模式应调用 ScheduleCandidates", ErrConfiguration)
	}
	if err != nil {
		return nil, err
	}

	return s.finalize(result)
}

// ScheduleCandidates 生成多个候选排班并返回 Pareto 非支配集
func (s *Scheduler) ScheduleCandidates() ([]Candidate, error) {
	return s.MultiObjective(s.deadline())
}

// greedyTabu 先用贪心生成种子，再用回溯搜索补全成完整可行解，最后用禁忌搜索优化
func (s *Scheduler) greedyTabu(deadline time.Time) (*domain.ScheduleResult, error) {
	seedResult := s.Greedy()

	result, err := s.Solve(s.assignmentFromResult(seedResult), deadline)
	if err != nil {
		return nil, err
	}

	if hasWarning(result, domain.WarningPartialResult) {
		// 截止时间内没有找到完整解，在贪心结果和搜索的部分解之间取填充更多的那个
		if countAssigned(seedResult) > countAssigned(result) {
			seedResult.Warnings = append(seedResult.Warnings, domain.ScheduleWarning{
				Kind:   domain.WarningGreedyFallback,
				Detail: "搜索超时，已退回贪心算法的尽力结果",
			})
			return seedResult, nil
		}
		return result, nil
	}

	return s.TabuSearch(result, deadline), nil
}

// finalize 对即将返回的结果做最后一次校验
// 硬约束被违反说明引擎内部出现了不一致，必须记录日志并报错，绝不能静默返回
func (s *Scheduler) finalize(result *domain.ScheduleResult) (*domain.ScheduleResult, error) {
	violations := Validate(s.request, s.parameters, result)
	for _, v := range violations {
		switch v.Kind {
		case ViolationUnderstaffed:
			result.Warnings = append(result.Warnings, domain.ScheduleWarning{
				Kind:      domain.WarningUnderstaffed,
				TaskID:    v.TaskID,
				Day:       v.Day,
				Type:      v.Type,
				Shortfall: v.Shortfall,
			})
		case ViolationSoftRuleBroken:
			result.Warnings = append(result.Warnings, domain.ScheduleWarning{
				Kind:       domain.WarningSoftRuleBroken,
				TaskID:     v.TaskID,
				Day:        v.Day,
				OperatorID: v.OperatorID,
				Detail:     v.Detail,
			})
		default:
			slog.Error("排班结果违反硬约束", "kind", v.Kind, "taskID", v.TaskID, "day", v.Day, "operatorID", v.OperatorID)
			return nil, fmt.Errorf("排班结果违反硬约束: %s", v.Kind)
		}
	}
	return result, nil
}

func hasWarning(result *domain.ScheduleResult, kind domain.WarningKind) bool {
	for _, warning := range result.Warnings {
		if warning.Kind == kind {
			return true
		}
	}
	return false
}

func countAssigned(result *domain.ScheduleResult) int {
	count := 0
	for _, cell := range result.Cells {
		if cell.TaskID != nil {
			count++
		}
	}
	return count
}
