package domain

type OperatorType string

const (
	OperatorTypeRegular     OperatorType = "正式工"
	OperatorTypeFlex        OperatorType = "机动工"
	OperatorTypeCoordinator OperatorType = "协调员"
)

type OperatorStatus string

const (
	OperatorStatusActive OperatorStatus = "在岗"
	OperatorStatusLeave  OperatorStatus = "休假"
	OperatorStatusSick   OperatorStatus = "病假"
)

type Operator struct {
	ID               int64          `json:"id"`
	Username         string         `json:"username"`
	FullName         string         `json:"fullName"`
	Type             OperatorType   `json:"type"`
	Status           OperatorStatus `json:"status"`
	Skills           []string       `json:"skills"`
	AvailableDays    []int32        `json:"availableDays"`    // 一周中可以上班的天（1 表示周一）
	PreferredTaskIDs []int64        `json:"preferredTaskIDs"` // 按偏好程度降序排列
}

// IsAvailable 判断操作员在某一天是否可以上班
func (o *Operator) IsAvailable(day int32) bool {
	for _, d := range o.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasSkill 判断操作员是否具有某个技能
func (o *Operator) HasSkill(skill string) bool {
	for _, s := range o.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// PreferenceRank 返回任务在操作员偏好列表中的排名，-1 表示不在偏好列表中
func (o *Operator) PreferenceRank(taskID int64) int {
	for i, id := range o.PreferredTaskIDs {
		if id == taskID {
			return i
		}
	}
	return -1
}
