package scheduler

import (
	"sort"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// MaxMatching 快速模式：把每一天的名额和候选操作员看作二分图，
// 用增广路径求最大匹配，只追求填充量而不考虑打分质量
// 填不满的名额留空，缺口在最终校验时统计成警告
func (s *Scheduler) MaxMatching() *domain.ScheduleResult {
	assignment := s.initialAssignment()

	for _, day := range s.request.Days {
		slotIdxs := append([]int(nil), s.daySlots[day]...)
		if len(slotIdxs) == 0 {
			continue
		}
		// 先处理候选少的名额，有利于更快达到饱和
		sort.SliceStable(slotIdxs, func(i, j int) bool {
			return len(s.candidates[slotIdxs[i]]) < len(s.candidates[slotIdxs[j]])
		})

		matchOfOp := make(map[int64]int)            // 操作员 -> 名额位置
		matchOfSlot := make([]int64, len(slotIdxs)) // 名额位置 -> 操作员
		for i := range matchOfSlot {
			matchOfSlot[i] = -1
		}

		var augment func(pos int, visited map[int64]bool) bool
		augment = func(pos int, visited map[int64]bool) bool {
			for _, opID := range s.candidates[slotIdxs[pos]] {
				if visited[opID] {
					continue
				}
				visited[opID] = true
				taken, matched := matchOfOp[opID]
				if !matched || augment(taken, visited) {
					matchOfOp[opID] = pos
					matchOfSlot[pos] = opID
					return true
				}
			}
			return false
		}

		for pos := range slotIdxs {
			augment(pos, make(map[int64]bool))
		}

		if _, exists := assignment[day]; !exists {
			assignment[day] = make(map[int64]int64)
		}
		for pos, opID := range matchOfSlot {
			if opID == -1 {
				continue
			}
			assignment[day][opID] = s.slots[slotIdxs[pos]].taskID
		}
	}

	return s.buildResult(assignment, nil)
}
