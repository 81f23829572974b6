package domain

type Task struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	RequiredSkill   string `json:"requiredSkill"`
	Heavy           bool   `json:"heavy"`           // 重体力任务，不宜连续安排
	CoordinatorOnly bool   `json:"coordinatorOnly"` // 只有协调员能够承担
}
