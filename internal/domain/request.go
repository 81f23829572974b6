package domain

// ScheduleRequest 是调用方提供的排班快照
// 引擎不会修改请求中的任何内容，只会返回新的 ScheduleResult
type ScheduleRequest struct {
	Operators       []*Operator           `json:"operators"`
	Tasks           []*Task               `json:"tasks"`
	Days            []int32               `json:"days"` // 按顺序排列的工作日（通常为 1~5）
	Requirements    []StaffingRequirement `json:"requirements"`
	Cells           []AssignmentCell      `json:"cells"` // 当前排班表，包含锁定和固定的格子
	ExcludedTaskIDs []int64               `json:"excludedTaskIDs"`
}

// TaskByID 根据 ID 查找任务，找不到时返回 nil
func (r *ScheduleRequest) TaskByID(id int64) *Task {
	for _, task := range r.Tasks {
		if task.ID == id {
			return task
		}
	}
	return nil
}

// OperatorByID 根据 ID 查找操作员，找不到时返回 nil
func (r *ScheduleRequest) OperatorByID(id int64) *Operator {
	for _, op := range r.Operators {
		if op.ID == id {
			return op
		}
	}
	return nil
}

// IsTaskExcluded 判断任务在本周期内是否被排除
func (r *ScheduleRequest) IsTaskExcluded(id int64) bool {
	for _, excluded := range r.ExcludedTaskIDs {
		if excluded == id {
			return true
		}
	}
	return false
}
