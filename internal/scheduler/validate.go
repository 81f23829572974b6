package scheduler

import (
	"fmt"
	"sort"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

type ViolationKind string

const (
	ViolationDoubleAssignment    ViolationKind = "double_assignment"
	ViolationSkillMismatch       ViolationKind = "skill_mismatch"
	ViolationUnavailableOperator ViolationKind = "unavailable_operator"
	ViolationUnderstaffed        ViolationKind = "understaffed"
	ViolationOverstaffed         ViolationKind = "overstaffed"
	ViolationLockedViolated      ViolationKind = "locked_violated"
	ViolationSoftRuleBroken      ViolationKind = "soft_rule_broken"
)

type Violation struct {
	Kind       ViolationKind       `json:"kind"`
	OperatorID int64               `json:"operatorID,omitempty"`
	TaskID     int64               `json:"taskID,omitempty"`
	Day        int32               `json:"day,omitempty"`
	Type       domain.OperatorType `json:"type,omitempty"`
	Shortfall  int32               `json:"shortfall,omitempty"`
	Detail     string              `json:"detail,omitempty"`
}

// Validate 对一个排班结果重新检查所有约束，返回违反项列表
// 这是一个纯函数，不做任何搜索，复杂度为 O(格子数)
// 引擎内部和外部调用方都通过它来独立确认硬约束是否满足
func Validate(request *domain.ScheduleRequest, parameters *Parameters, result *domain.ScheduleResult) []Violation {
	if parameters == nil {
		parameters = DefaultParameters()
	}

	violations := make([]Violation, 0)

	// 每个操作员每天至多占用一个非空格子
	seen := make(map[int32]map[int64]bool)
	for _, cell := range result.Cells {
		if cell.TaskID == nil {
			continue
		}
		if _, exists := seen[cell.Day]; !exists {
			seen[cell.Day] = make(map[int64]bool)
		}
		if seen[cell.Day][cell.OperatorID] {
			violations = append(violations, Violation{
				Kind:       ViolationDoubleAssignment,
				OperatorID: cell.OperatorID,
				Day:        cell.Day,
			})
			continue
		}
		seen[cell.Day][cell.OperatorID] = true
	}

	// 锁定格子必须原样出现在结果中
	if parameters.RespectLocked {
		for _, locked := range request.Cells {
			if !locked.Locked {
				continue
			}
			found := false
			for _, cell := range result.Cells {
				if cell.Day != locked.Day || cell.OperatorID != locked.OperatorID {
					continue
				}
				if sameTaskRef(cell.TaskID, locked.TaskID) {
					found = true
				}
				break
			}
			if !found {
				violations = append(violations, Violation{
					Kind:       ViolationLockedViolated,
					OperatorID: locked.OperatorID,
					Day:        locked.Day,
				})
			}
		}
	}

	// 逐格子检查技能、可用性和任务限制
	// 锁定格子由调用方负责，不在这里检查技能和可用性
	for _, cell := range result.Cells {
		if cell.TaskID == nil || cell.Locked {
			continue
		}
		op := request.OperatorByID(cell.OperatorID)
		task := request.TaskByID(*cell.TaskID)
		if op == nil || task == nil {
			violations = append(violations, Violation{
				Kind:       ViolationUnavailableOperator,
				OperatorID: cell.OperatorID,
				Day:        cell.Day,
				Detail:     "格子引用了不存在的操作员或任务",
			})
			continue
		}
		if op.Status != domain.OperatorStatusActive || !op.IsAvailable(cell.Day) {
			violations = append(violations, Violation{
				Kind:       ViolationUnavailableOperator,
				OperatorID: op.ID,
				TaskID:     task.ID,
				Day:        cell.Day,
			})
		}
		if parameters.StrictSkillMatch && !op.HasSkill(task.RequiredSkill) {
			violations = append(violations, Violation{
				Kind:       ViolationSkillMismatch,
				OperatorID: op.ID,
				TaskID:     task.ID,
				Day:        cell.Day,
			})
		}
		if task.CoordinatorOnly && op.Type != domain.OperatorTypeCoordinator {
			violations = append(violations, Violation{
				Kind:       ViolationSkillMismatch,
				OperatorID: op.ID,
				TaskID:     task.ID,
				Day:        cell.Day,
				Detail:     "该任务仅协调员可承担",
			})
		}
	}

	violations = append(violations, validateStaffing(request, parameters, result)...)
	violations = append(violations, validateSoftRules(request, parameters, result)...)

	return violations
}

// HasHardViolation 判断违反项中是否存在硬约束问题
func HasHardViolation(violations []Violation) bool {
	for _, v := range violations {
		if v.Kind != ViolationSoftRuleBroken {
			return true
		}
	}
	return false
}

// validateStaffing 检查每个 (task, day) 的各类型人数是否恰好满足要求
func validateStaffing(request *domain.ScheduleRequest, parameters *Parameters, result *domain.ScheduleResult) []Violation {
	violations := make([]Violation, 0)

	// 统计每个 (task, day) 实际分配到的各类型人数
	type cellKey struct {
		taskID int64
		day    int32
	}
	assignedByType := make(map[cellKey]map[domain.OperatorType]int32)
	for _, cell := range result.Cells {
		if cell.TaskID == nil {
			continue
		}
		op := request.OperatorByID(cell.OperatorID)
		if op == nil {
			continue
		}
		k := cellKey{taskID: *cell.TaskID, day: cell.Day}
		if _, exists := assignedByType[k]; !exists {
			assignedByType[k] = make(map[domain.OperatorType]int32)
		}
		assignedByType[k][op.Type]++
	}

	requiredTotal := make(map[cellKey]int32)

	for _, requirement := range request.Requirements {
		if request.IsTaskExcluded(requirement.TaskID) {
			continue
		}
		for _, day := range request.Days {
			counts := requirement.CountsForDay(day)
			k := cellKey{taskID: requirement.TaskID, day: day}
			assigned := assignedByType[k]

			remaining := make(map[domain.OperatorType]int32)
			for opType, count := range assigned {
				remaining[opType] = count
			}

			// 先让每种类型的名额消耗类型完全一致的操作员，
			// 全部消耗完之后，剩余的机动工才可以顶替正式工的缺口
			required := make(map[domain.OperatorType]int32)
			types := make([]domain.OperatorType, 0, len(counts))
			for _, tc := range counts {
				if _, exists := required[tc.Type]; !exists {
					types = append(types, tc.Type)
				}
				required[tc.Type] += tc.Count
				requiredTotal[k] += tc.Count
			}

			missing := make(map[domain.OperatorType]int32)
			for _, opType := range types {
				used := min32(required[opType], remaining[opType])
				remaining[opType] -= used
				missing[opType] = required[opType] - used
			}
			if parameters.FlexCoversRegular && missing[domain.OperatorTypeRegular] > 0 {
				covered := min32(missing[domain.OperatorTypeRegular], remaining[domain.OperatorTypeFlex])
				remaining[domain.OperatorTypeFlex] -= covered
				missing[domain.OperatorTypeRegular] -= covered
			}

			for _, opType := range types {
				if missing[opType] > 0 {
					violations = append(violations, Violation{
						Kind:      ViolationUnderstaffed,
						TaskID:    requirement.TaskID,
						Day:       day,
						Type:      opType,
						Shortfall: missing[opType],
					})
				}
			}
		}
	}

	// 超出总名额的分配都算超员，包括分配给了没有任何要求的任务
	// 按天和任务排序，保证违反项的顺序稳定
	keys := make([]cellKey, 0, len(assignedByType))
	for k := range assignedByType {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].taskID < keys[j].taskID
	})
	for _, k := range keys {
		total := int32(0)
		for _, count := range assignedByType[k] {
			total += count
		}
		if excess := total - requiredTotal[k]; excess > 0 {
			violations = append(violations, Violation{
				Kind:      ViolationOverstaffed,
				TaskID:    k.taskID,
				Day:       k.day,
				Shortfall: excess,
			})
		}
	}

	return violations
}

// validateSoftRules 检查软规则，违反时只产生警告不阻塞结果
func validateSoftRules(request *domain.ScheduleRequest, parameters *Parameters, result *domain.ScheduleResult) []Violation {
	violations := make([]Violation, 0)

	// 固定格子应尽量保留
	if parameters.RespectPinned {
		for _, pinned := range request.Cells {
			if !pinned.Pinned || pinned.Locked || pinned.TaskID == nil {
				continue
			}
			kept := false
			for _, cell := range result.Cells {
				if cell.Day == pinned.Day && cell.OperatorID == pinned.OperatorID &&
					cell.TaskID != nil && *cell.TaskID == *pinned.TaskID {
					kept = true
					break
				}
			}
			if !kept {
				violations = append(violations, Violation{
					Kind:       ViolationSoftRuleBroken,
					OperatorID: pinned.OperatorID,
					TaskID:     *pinned.TaskID,
					Day:        pinned.Day,
					Detail:     "固定的格子未能保留",
				})
			}
		}
	}

	// 按周内天的顺序重建每个操作员的任务序列
	taskOfDay := make(map[int64]map[int32]int64) // operatorID -> day -> taskID
	for _, cell := range result.Cells {
		if cell.TaskID == nil {
			continue
		}
		if _, exists := taskOfDay[cell.OperatorID]; !exists {
			taskOfDay[cell.OperatorID] = make(map[int32]int64)
		}
		taskOfDay[cell.OperatorID][cell.Day] = *cell.TaskID
	}

	for _, op := range request.Operators {
		days := taskOfDay[op.ID]
		if days == nil {
			continue
		}

		// 同一任务连续天数限制
		if parameters.MaxConsecutiveDaysOnTask > 0 {
			streak := int32(0)
			var lastTask int64
			for _, day := range request.Days {
				taskID, assigned := days[day]
				if !assigned {
					streak = 0
					continue
				}
				if streak > 0 && taskID == lastTask {
					streak++
				} else {
					streak = 1
				}
				lastTask = taskID
				if streak == parameters.MaxConsecutiveDaysOnTask+1 {
					violations = append(violations, Violation{
						Kind:       ViolationSoftRuleBroken,
						OperatorID: op.ID,
						TaskID:     taskID,
						Day:        day,
						Detail:     fmt.Sprintf("同一任务连续超过 %d 天", parameters.MaxConsecutiveDaysOnTask),
					})
				}
			}
		}

		// 连续重体力任务限制
		if !parameters.AllowConsecutiveHeavy {
			prevHeavy := false
			for _, day := range request.Days {
				taskID, assigned := days[day]
				if !assigned {
					prevHeavy = false
					continue
				}
				task := request.TaskByID(taskID)
				heavy := task != nil && task.Heavy
				if heavy && prevHeavy {
					violations = append(violations, Violation{
						Kind:       ViolationSoftRuleBroken,
						OperatorID: op.ID,
						TaskID:     taskID,
						Day:        day,
						Detail:     "连续安排了重体力任务",
					})
				}
				prevHeavy = heavy
			}
		}
	}

	return violations
}

func sameTaskRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
