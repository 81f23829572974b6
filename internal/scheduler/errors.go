package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

// ErrConfiguration 表示参数不合法，在任何搜索开始之前返回
var ErrConfiguration = errors.New("排班参数不合法")

// Shortfall 表示某个 (task, day, type) 的人数缺口
type Shortfall struct {
	TaskID    int64               `json:"taskID"`
	Day       int32               `json:"day"`
	Type      domain.OperatorType `json:"type"`
	Shortfall int32               `json:"shortfall"`
}

// InfeasibleError 表示硬约束无法被满足
// Shortfalls 中记录了预处理和搜索过程中发现的所有缺口（已去重）
type InfeasibleError struct {
	Shortfalls []Shortfall
}

func (e *InfeasibleError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, sf := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("任务 %d 第 %d 天缺少 %d 名%s", sf.TaskID, sf.Day, sf.Shortfall, sf.Type))
	}
	return "无法生成满足所有硬约束的排班: " + strings.Join(parts, "; ")
}

// mergeShortfalls 按 (task, day, type) 去重，保留最大的缺口数
func mergeShortfalls(shortfalls []Shortfall) []Shortfall {
	type key struct {
		taskID int64
		day    int32
		opType domain.OperatorType
	}
	merged := make(map[key]int32)
	for _, sf := range shortfalls {
		k := key{taskID: sf.TaskID, day: sf.Day, opType: sf.Type}
		if sf.Shortfall > merged[k] {
			merged[k] = sf.Shortfall
		}
	}

	result := make([]Shortfall, 0, len(merged))
	for k, count := range merged {
		result = append(result, Shortfall{TaskID: k.taskID, Day: k.day, Type: k.opType, Shortfall: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Day != result[j].Day {
			return result[i].Day < result[j].Day
		}
		if result[i].TaskID != result[j].TaskID {
			return result[i].TaskID < result[j].TaskID
		}
		return result[i].Type < result[j].Type
	})
	return result
}
