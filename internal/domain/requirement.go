package domain

type TypeCount struct {
	Type  OperatorType `json:"type"`
	Count int32        `json:"count"`
}

// StaffingRequirement 表示某个任务每天需要的各类型操作员的确切人数
type StaffingRequirement struct {
	TaskID    int64                 `json:"taskID"`
	Defaults  []TypeCount           `json:"defaults"`
	Overrides map[int32][]TypeCount `json:"overrides,omitempty"` // 按天覆盖默认人数
}

// CountsForDay 返回某一天生效的人数要求
func (r *StaffingRequirement) CountsForDay(day int32) []TypeCount {
	if counts, exists := r.Overrides[day]; exists {
		return counts
	}
	return r.Defaults
}
