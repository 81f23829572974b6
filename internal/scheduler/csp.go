package scheduler

import (
	"sort"
	"time"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// 把一周的排班建模为约束满足问题：
// 每个名额是一个变量，域是通过硬约束过滤后的候选操作员，
// 约束是同一个操作员一天至多占用一个名额

type searchStatus int

const (
	statusSolved searchStatus = iota
	statusExhausted
	statusDeadline
)

// hintBonus 让贪心种子中选中的操作员排在候选尝试顺序的最前面
const hintBonus = 100.0

type removal struct {
	slotIdx int
	candPos int
}

type cspState struct {
	s        *Scheduler
	order    [][]int // 每个槽位的候选尝试顺序（打分降序）
	posOf    []map[int64]int
	inDomain [][]bool
	domCount []int
	bound    []int64 // 槽位 -> 操作员，-1 表示未绑定
	boundCnt int
	trail    []removal // 前向检查的撤销栈
	deadline time.Time
	deadEnds []Shortfall
	best     []int64 // 目前为止绑定最多的部分解
	bestCnt  int
}

// Solve 运行约束传播和回溯搜索
// hint 是可选的贪心种子（day -> operator -> task），用于引导候选尝试顺序
// 返回完整可行解，或带 partial_result 警告的尽力结果（超时时），
// 或 InfeasibleError（搜索空间穷尽时）
func (s *Scheduler) Solve(hint map[int32]map[int64]int64, deadline time.Time) (*domain.ScheduleResult, error) {
	if len(s.slots) == 0 {
		return s.buildResult(s.initialAssignment(), nil), nil
	}

	state := s.newCSPState(hint, deadline)

	// 预处理：先按 (task, day, type) 检查名额数和候选数，再做排他性传播
	if shortfalls := state.groupShortfalls(); len(shortfalls) > 0 {
		return nil, &InfeasibleError{Shortfalls: mergeShortfalls(shortfalls)}
	}
	if shortfalls := state.propagateExclusivity(); len(shortfalls) > 0 {
		return nil, &InfeasibleError{Shortfalls: mergeShortfalls(shortfalls)}
	}

	switch state.search() {
	case statusSolved:
		return s.buildResult(state.assignment(state.bound), nil), nil
	case statusDeadline:
		result := s.buildResult(state.assignment(state.best), []domain.ScheduleWarning{{
			Kind:   domain.WarningPartialResult,
			Detail: "搜索在截止时间前未完成，返回目前找到的最优部分解",
		}})
		return result, nil
	default:
		shortfalls := state.deadEnds
		if len(shortfalls) == 0 {
			// 穷尽但没有记录到死端，至少报告候选最少的槽位
			scarcest := 0
			for i := range s.slots {
				if len(s.candidates[i]) < len(s.candidates[scarcest]) {
					scarcest = i
				}
			}
			sl := s.slots[scarcest]
			shortfalls = []Shortfall{{TaskID: sl.taskID, Day: sl.day, Type: sl.opType, Shortfall: 1}}
		}
		return nil, &InfeasibleError{Shortfalls: mergeShortfalls(shortfalls)}
	}
}

func (s *Scheduler) newCSPState(hint map[int32]map[int64]int64, deadline time.Time) *cspState {
	state := &cspState{
		s:        s,
		order:    make([][]int, len(s.slots)),
		posOf:    make([]map[int64]int, len(s.slots)),
		inDomain: make([][]bool, len(s.slots)),
		domCount: make([]int, len(s.slots)),
		bound:    make([]int64, len(s.slots)),
		best:     make([]int64, len(s.slots)),
		deadline: deadline,
	}

	for i := range s.slots {
		sl := s.slots[i]
		candidates := s.candidates[i]

		state.bound[i] = -1
		state.best[i] = -1
		state.domCount[i] = len(candidates)
		state.inDomain[i] = make([]bool, len(candidates))
		state.posOf[i] = make(map[int64]int, len(candidates))

		scores := make([]float64, len(candidates))
		order := make([]int, len(candidates))
		for pos, opID := range candidates {
			state.inDomain[i][pos] = true
			state.posOf[i][opID] = pos
			order[pos] = pos

			score := s.candidateScore(sl, opID, 0)
			if taskID, hinted := hint[sl.day][opID]; hinted && taskID == sl.taskID {
				score += hintBonus
			}
			scores[pos] = score
		}
		sort.SliceStable(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})
		state.order[i] = order
	}

	return state
}

// groupShortfalls 检查每个 (task, day, type) 的候选人数是否足够
// 同一组内所有槽位的候选集相同，因此直接比较名额数和候选数
func (c *cspState) groupShortfalls() []Shortfall {
	type groupKey struct {
		taskID int64
		day    int32
		opType domain.OperatorType
	}
	groupSize := make(map[groupKey]int32)
	groupEligible := make(map[groupKey]int32)
	keys := make([]groupKey, 0)

	for i, sl := range c.s.slots {
		k := groupKey{taskID: sl.taskID, day: sl.day, opType: sl.opType}
		if _, exists := groupSize[k]; !exists {
			keys = append(keys, k)
			groupEligible[k] = int32(len(c.s.candidates[i]))
		}
		groupSize[k]++
	}

	shortfalls := make([]Shortfall, 0)
	for _, k := range keys {
		if missing := groupSize[k] - groupEligible[k]; missing > 0 {
			shortfalls = append(shortfalls, Shortfall{
				TaskID:    k.taskID,
				Day:       k.day,
				Type:      k.opType,
				Shortfall: missing,
			})
		}
	}
	return shortfalls
}

// propagateExclusivity 对"同一操作员一天至多一个名额"做 AC-3 式的不动点传播：
// 域中只剩一个候选的槽位会把该候选从当天其他槽位的域中移除，
// 移除可能产生新的单候选槽位，反复处理直到不动点
// 任何域被清空都意味着无解
func (c *cspState) propagateExclusivity() []Shortfall {
	queue := make([]int, 0)
	for i := range c.s.slots {
		if c.domCount[i] == 1 {
			queue = append(queue, i)
		}
	}

	shortfalls := make([]Shortfall, 0)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if c.domCount[idx] != 1 {
			continue
		}

		var opID int64 = -1
		for pos, ok := range c.inDomain[idx] {
			if ok {
				opID = c.s.candidates[idx][pos]
				break
			}
		}

		for _, other := range c.s.daySlots[c.s.slots[idx].day] {
			if other == idx {
				continue
			}
			pos, exists := c.posOf[other][opID]
			if !exists || !c.inDomain[other][pos] {
				continue
			}
			c.inDomain[other][pos] = false
			c.domCount[other]--
			switch c.domCount[other] {
			case 0:
				sl := c.s.slots[other]
				shortfalls = append(shortfalls, Shortfall{
					TaskID:    sl.taskID,
					Day:       sl.day,
					Type:      sl.opType,
					Shortfall: 1,
				})
			case 1:
				queue = append(queue, other)
			}
		}
	}
	return shortfalls
}

// search 深度优先回溯
// 变量顺序为最小剩余值优先，值顺序为预先算好的打分降序
func (c *cspState) search() searchStatus {
	if time.Now().After(c.deadline) {
		return statusDeadline
	}
	if c.boundCnt == len(c.s.slots) {
		return statusSolved
	}

	idx := c.selectSlot()

	for _, pos := range c.order[idx] {
		if !c.inDomain[idx][pos] {
			continue
		}
		opID := c.s.candidates[idx][pos]

		c.bound[idx] = opID
		c.boundCnt++
		if c.boundCnt > c.bestCnt {
			c.bestCnt = c.boundCnt
			copy(c.best, c.bound)
		}

		mark := len(c.trail)
		if c.forwardCheck(idx, opID) {
			switch status := c.search(); status {
			case statusSolved, statusDeadline:
				return status
			}
		}

		c.undo(mark)
		c.bound[idx] = -1
		c.boundCnt--
	}

	return statusExhausted
}

// selectSlot 选择下一个要绑定的槽位：
// 当前域最小优先，其次原始候选更少（更稀缺）优先，最后按声明顺序
func (c *cspState) selectSlot() int {
	chosen := -1
	for i := range c.s.slots {
		if c.bound[i] != -1 {
			continue
		}
		if chosen == -1 {
			chosen = i
			continue
		}
		if c.domCount[i] < c.domCount[chosen] {
			chosen = i
			continue
		}
		if c.domCount[i] == c.domCount[chosen] &&
			len(c.s.candidates[i]) < len(c.s.candidates[chosen]) {
			chosen = i
		}
	}
	return chosen
}

// forwardCheck 把刚绑定的操作员从当天其他未绑定槽位的域中移除
// 任何域被清空都意味着这次绑定不可行，记录死端并返回 false
func (c *cspState) forwardCheck(idx int, opID int64) bool {
	ok := true
	for _, other := range c.s.daySlots[c.s.slots[idx].day] {
		if other == idx || c.bound[other] != -1 {
			continue
		}
		pos, exists := c.posOf[other][opID]
		if !exists || !c.inDomain[other][pos] {
			continue
		}
		c.inDomain[other][pos] = false
		c.domCount[other]--
		c.trail = append(c.trail, removal{slotIdx: other, candPos: pos})
		if c.domCount[other] == 0 {
			sl := c.s.slots[other]
			c.deadEnds = append(c.deadEnds, Shortfall{
				TaskID:    sl.taskID,
				Day:       sl.day,
				Type:      sl.opType,
				Shortfall: 1,
			})
			ok = false
		}
	}
	return ok
}

// undo 把撤销栈回退到指定位置
func (c *cspState) undo(mark int) {
	for len(c.trail) > mark {
		r := c.trail[len(c.trail)-1]
		c.trail = c.trail[:len(c.trail)-1]
		c.inDomain[r.slotIdx][r.candPos] = true
		c.domCount[r.slotIdx]++
	}
}

// assignment 把槽位绑定转换为内部排班表（含锁定格子）
func (c *cspState) assignment(bound []int64) map[int32]map[int64]int64 {
	assignment := c.s.initialAssignment()
	for i, opID := range bound {
		if opID == -1 {
			continue
		}
		sl := c.s.slots[i]
		if _, exists := assignment[sl.day]; !exists {
			assignment[sl.day] = make(map[int64]int64)
		}
		assignment[sl.day][opID] = sl.taskID
	}
	return assignment
}
