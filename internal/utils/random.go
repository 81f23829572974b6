package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// 仓库里常见的技能和对应的任务名
var warehouseSkills = []string{"叉车", "理货", "打包", "质检", "收货", "盘点", "故障处理"}

var operatorTypes = []domain.OperatorType{
	domain.OperatorTypeRegular,
	domain.OperatorTypeRegular,
	domain.OperatorTypeRegular,
	domain.OperatorTypeFlex,
	domain.OperatorTypeCoordinator,
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset(arr []int32) []int32 {
	arrCopy := append([]int32{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

func GenerateRandomOperator(id int64, tasks []*domain.Task) *domain.Operator {
	fullName := GenerateRandomChineseName()

	skills := make([]string, 0)
	for _, skill := range warehouseSkills {
		if rand.Float64() < 0.4 {
			skills = append(skills, skill)
		}
	}
	if len(skills) == 0 {
		skills = append(skills, warehouseSkills[rand.Intn(len(warehouseSkills))])
	}

	status := domain.OperatorStatusActive
	switch rand.Intn(10) {
	case 0:
		status = domain.OperatorStatusLeave
	case 1:
		status = domain.OperatorStatusSick
	}

	preferred := make([]int64, 0)
	for _, task := range tasks {
		if rand.Float64() < 0.3 {
			preferred = append(preferred, task.ID)
		}
	}

	return &domain.Operator{
		ID:               id,
		Username:         GenerateUsernameFromChineseName(fullName),
		FullName:         fullName,
		Type:             operatorTypes[rand.Intn(len(operatorTypes))],
		Status:           status,
		Skills:           skills,
		AvailableDays:    GenerateRandomSubset([]int32{1, 2, 3, 4, 5}),
		PreferredTaskIDs: preferred,
	}
}

func GenerateRandomTasks(n int) []*domain.Task {
	tasks := make([]*domain.Task, n)
	for i := range tasks {
		skill := warehouseSkills[i%len(warehouseSkills)]
		tasks[i] = &domain.Task{
			ID:              int64(i + 1),
			Name:            skill + "任务",
			RequiredSkill:   skill,
			Heavy:           rand.Float64() < 0.2,
			CoordinatorOnly: rand.Float64() < 0.1,
		}
	}
	return tasks
}

func GenerateRandomRequirements(tasks []*domain.Task) []domain.StaffingRequirement {
	requirements := make([]domain.StaffingRequirement, len(tasks))
	for i, task := range tasks {
		counts := []domain.TypeCount{
			{Type: domain.OperatorTypeRegular, Count: int32(rand.Intn(2) + 1)},
		}
		if task.CoordinatorOnly {
			counts = []domain.TypeCount{
				{Type: domain.OperatorTypeCoordinator, Count: 1},
			}
		}
		requirements[i] = domain.StaffingRequirement{
			TaskID:   task.ID,
			Defaults: counts,
		}
	}
	return requirements
}

// GenerateRandomRequest 生成一个用于冒烟测试和演示的随机排班请求
func GenerateRandomRequest(operatorCount int, taskCount int) *domain.ScheduleRequest {
	tasks := GenerateRandomTasks(taskCount)

	operators := make([]*domain.Operator, operatorCount)
	for i := range operators {
		operators[i] = GenerateRandomOperator(int64(i+1), tasks)
	}

	return &domain.ScheduleRequest{
		Operators:    operators,
		Tasks:        tasks,
		Days:         []int32{1, 2, 3, 4, 5},
		Requirements: GenerateRandomRequirements(tasks),
		Cells:        make([]domain.AssignmentCell, 0),
	}
}
