package scheduler

import (
	"sort"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// Greedy 贪心排班
// 按天处理，一天内先填候选最少的槽位（静态的"最受限优先"近似），
// 每个槽位选择打分最高的候选，决策不可回退
// 填不满的槽位直接留空，缺口在最终校验时统计成警告
func (s *Scheduler) Greedy() *domain.ScheduleResult {
	assignment := s.initialAssignment()
	workload := make(map[int64]int32)
	for _, ops := range assignment {
		for opID := range ops {
			workload[opID]++
		}
	}

	for _, day := range s.request.Days {
		slotIdxs := append([]int(nil), s.daySlots[day]...)
		sort.SliceStable(slotIdxs, func(i, j int) bool {
			return len(s.candidates[slotIdxs[i]]) < len(s.candidates[slotIdxs[j]])
		})

		if _, exists := assignment[day]; !exists {
			assignment[day] = make(map[int64]int64)
		}

		for _, idx := range slotIdxs {
			sl := s.slots[idx]

			bestOp := int64(-1)
			bestScore := 0.0
			for _, opID := range s.candidates[idx] {
				if _, busy := assignment[day][opID]; busy {
					continue
				}
				score := s.candidateScore(sl, opID, workload[opID])
				if bestOp == -1 || score > bestScore {
					bestOp = opID
					bestScore = score
				}
			}
			if bestOp == -1 {
				continue
			}

			assignment[day][bestOp] = sl.taskID
			workload[bestOp]++
		}
	}

	return s.buildResult(assignment, nil)
}
