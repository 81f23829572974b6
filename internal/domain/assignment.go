package domain

// AssignmentCell 表示某个操作员在某一天的排班格子
// TaskID 为 nil 时表示这一天没有安排任务
type AssignmentCell struct {
	Day        int32  `json:"day"`
	OperatorID int64  `json:"operatorID"`
	TaskID     *int64 `json:"taskID"`
	Locked     bool   `json:"locked"` // 引擎不允许修改
	Pinned     bool   `json:"pinned"` // 引擎应尽量保留，只有无可行方案时才可以改动
}
