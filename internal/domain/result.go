package domain

type WarningKind string

const (
	WarningUnderstaffed   WarningKind = "understaffed"
	WarningSoftRuleBroken WarningKind = "soft_rule_broken"
	WarningPartialResult  WarningKind = "partial_result"
	WarningGreedyFallback WarningKind = "greedy_fallback"
)

type ScheduleWarning struct {
	Kind       WarningKind  `json:"kind"`
	TaskID     int64        `json:"taskID,omitempty"`
	Day        int32        `json:"day,omitempty"`
	Type       OperatorType `json:"type,omitempty"`
	OperatorID int64        `json:"operatorID,omitempty"`
	Shortfall  int32        `json:"shortfall,omitempty"`
	Detail     string       `json:"detail,omitempty"`
}

// ScheduleResult 表示一周的完整排班结果
type ScheduleResult struct {
	Cells    []AssignmentCell  `json:"cells"`
	Warnings []ScheduleWarning `json:"warnings"`
}
