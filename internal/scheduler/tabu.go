package scheduler

import (
	"sort"
	"time"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// tabuMove 表示邻域中的一步：
// swap 为真时是同一天内 opA 和 opB 互换任务，否则是把 opA 改派到 taskB
type tabuMove struct {
	day   int32
	swap  bool
	opA   int64
	opB   int64
	taskA int64
	taskB int64
}

// reverse 返回撤销这一步的移动，用于写入禁忌表
func (m tabuMove) reverse() tabuMove {
	if m.swap {
		return m
	}
	return tabuMove{day: m.day, opA: m.opA, taskA: m.taskB, taskB: m.taskA}
}

// TabuSearch 对一个可行排班做禁忌搜索优化
// 邻域是保持可行的同天交换和改派，禁忌表是固定容量的 FIFO，
// 渴望准则允许打破禁忌刷新历史最优
// 返回的结果永远不会比输入差
func (s *Scheduler) TabuSearch(start *domain.ScheduleResult, deadline time.Time) *domain.ScheduleResult {
	current := s.assignmentFromResult(start)
	bestAssignment := cloneAssignment(current)
	bestScore := s.ScalarScore(s.evaluateAssignment(current))

	// 起点本身可能带有缺口（尽力结果），移动不允许让硬约束变得更糟
	baselineHard := countHardViolations(s.request, s.parameters, s.buildResult(current, nil))

	tabu := make([]tabuMove, 0, s.parameters.TabuListSize)
	inTabu := func(m tabuMove) bool {
		for _, t := range tabu {
			if t == m {
				return true
			}
		}
		return false
	}

	for iter := int32(0); iter < s.parameters.MaxIterations; iter++ {
		if time.Now().After(deadline) {
			break
		}

		var chosenMove *tabuMove
		var chosenAssignment map[int32]map[int64]int64
		chosenScore := 0.0

		for _, m := range s.neighborhood(current) {
			next := cloneAssignment(current)
			applyMove(next, m)

			// 移动必须保持可行，接受前重新校验
			if countHardViolations(s.request, s.parameters, s.buildResult(next, nil)) > baselineHard {
				continue
			}

			score := s.ScalarScore(s.evaluateAssignment(next))
			if inTabu(m) && score <= bestScore {
				continue
			}
			if chosenMove == nil || score > chosenScore {
				move := m
				chosenMove = &move
				chosenAssignment = next
				chosenScore = score
			}
		}

		if chosenMove == nil {
			break
		}

		current = chosenAssignment
		if s.parameters.TabuListSize > 0 {
			tabu = append(tabu, chosenMove.reverse())
			if len(tabu) > int(s.parameters.TabuListSize) {
				tabu = tabu[1:]
			}
		}

		if chosenScore > bestScore {
			bestScore = chosenScore
			bestAssignment = cloneAssignment(current)
		}
	}

	warnings := append([]domain.ScheduleWarning(nil), start.Warnings...)
	return s.buildResult(bestAssignment, warnings)
}

// neighborhood 枚举当前排班的所有候选移动，顺序是确定的
func (s *Scheduler) neighborhood(assignment map[int32]map[int64]int64) []tabuMove {
	moves := make([]tabuMove, 0)

	// 每个 (task, day) 的总名额数，用于判断改派的目标任务是否还有空位
	type cellKey struct {
		taskID int64
		day    int32
	}
	capacity := make(map[cellKey]int32)
	for _, sl := range s.slots {
		capacity[cellKey{taskID: sl.taskID, day: sl.day}]++
	}
	for day, locked := range s.lockedByDay {
		for _, taskID := range locked {
			if taskID != nil {
				capacity[cellKey{taskID: *taskID, day: day}]++
			}
		}
	}

	for _, day := range s.request.Days {
		assigned := make(map[cellKey]int32)
		opIDs := make([]int64, 0, len(assignment[day]))
		for opID, taskID := range assignment[day] {
			assigned[cellKey{taskID: taskID, day: day}]++
			if _, isLocked := s.lockedByDay[day][opID]; isLocked {
				continue
			}
			opIDs = append(opIDs, opID)
		}
		sort.Slice(opIDs, func(i, j int) bool { return opIDs[i] < opIDs[j] })

		// 同一天内两个操作员互换任务
		for i := 0; i < len(opIDs); i++ {
			for j := i + 1; j < len(opIDs); j++ {
				taskA := assignment[day][opIDs[i]]
				taskB := assignment[day][opIDs[j]]
				if taskA == taskB {
					continue
				}
				opA := s.operatorMap[opIDs[i]]
				opB := s.operatorMap[opIDs[j]]
				if s.tasks[taskA] == nil || s.tasks[taskB] == nil {
					continue
				}
				if !s.eligibleForTask(opA, s.tasks[taskB], day) || !s.eligibleForTask(opB, s.tasks[taskA], day) {
					continue
				}
				moves = append(moves, tabuMove{day: day, swap: true, opA: opIDs[i], opB: opIDs[j], taskA: taskA, taskB: taskB})
			}
		}

		// 把一个操作员改派到还有空位的其他任务
		for _, opID := range opIDs {
			taskA := assignment[day][opID]
			op := s.operatorMap[opID]
			for _, requirement := range s.request.Requirements {
				taskB := requirement.TaskID
				if taskB == taskA || s.request.IsTaskExcluded(taskB) {
					continue
				}
				k := cellKey{taskID: taskB, day: day}
				if assigned[k] >= capacity[k] {
					continue
				}
				task := s.tasks[taskB]
				if task == nil || !s.eligibleForTask(op, task, day) {
					continue
				}
				moves = append(moves, tabuMove{day: day, opA: opID, taskA: taskA, taskB: taskB})
			}
		}
	}

	return moves
}

// eligibleForTask 不含名额类型的硬约束检查，类型人数由校验器把关
func (s *Scheduler) eligibleForTask(op *domain.Operator, task *domain.Task, day int32) bool {
	if op == nil || op.Status != domain.OperatorStatusActive || !op.IsAvailable(day) {
		return false
	}
	if task.CoordinatorOnly && op.Type != domain.OperatorTypeCoordinator {
		return false
	}
	if s.parameters.StrictSkillMatch && !op.HasSkill(task.RequiredSkill) {
		return false
	}
	return true
}

func applyMove(assignment map[int32]map[int64]int64, m tabuMove) {
	if m.swap {
		assignment[m.day][m.opA] = m.taskB
		assignment[m.day][m.opB] = m.taskA
		return
	}
	assignment[m.day][m.opA] = m.taskB
}

func cloneAssignment(assignment map[int32]map[int64]int64) map[int32]map[int64]int64 {
	clone := make(map[int32]map[int64]int64, len(assignment))
	for day, ops := range assignment {
		clone[day] = make(map[int64]int64, len(ops))
		for opID, taskID := range ops {
			clone[day][opID] = taskID
		}
	}
	return clone
}

func countHardViolations(request *domain.ScheduleRequest, parameters *Parameters, result *domain.ScheduleResult) int {
	count := 0
	for _, v := range Validate(request, parameters, result) {
		if v.Kind != ViolationSoftRuleBroken {
			count++
		}
	}
	return count
}
