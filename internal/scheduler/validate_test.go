package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

func taskRef(id int64) *int64 {
	return &id
}

func kindsOf(violations []Violation) []ViolationKind {
	kinds := make([]ViolationKind, 0, len(violations))
	for _, v := range violations {
		kinds = append(kinds, v.Kind)
	}
	return kinds
}

func simpleRequest() *domain.ScheduleRequest {
	return &domain.ScheduleRequest{
		Operators: []*domain.Operator{
			{
				ID: 1, Username: "wangwei1", FullName: "王伟",
				Type: domain.OperatorTypeRegular, Status: domain.OperatorStatusActive,
				Skills: []string{"理货"}, AvailableDays: []int32{1, 2, 3, 4, 5},
			},
			{
				ID: 2, Username: "lifang2", FullName: "李芳",
				Type: domain.OperatorTypeRegular, Status: domain.OperatorStatusActive,
				Skills: []string{"理货"}, AvailableDays: []int32{1, 2, 3, 4, 5},
			},
		},
		Tasks: []*domain.Task{
			{ID: 10, Name: "理货任务", RequiredSkill: "理货"},
		},
		Days: []int32{1, 2, 3, 4, 5},
		Requirements: []domain.StaffingRequirement{
			{TaskID: 10, Defaults: []domain.TypeCount{{Type: domain.OperatorTypeRegular, Count: 1}}},
		},
	}
}

func TestValidateDoubleAssignment(t *testing.T) {
	request := simpleRequest()
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationDoubleAssignment)
}

func TestValidateSkillMismatch(t *testing.T) {
	request := simpleRequest()
	request.Operators[0].Skills = []string{"打包"}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationSkillMismatch)

	// 关闭严格技能匹配之后不再报告
	parameters := DefaultParameters()
	parameters.StrictSkillMatch = false
	violations = Validate(request, parameters, result)
	assert.NotContains(t, kindsOf(violations), ViolationSkillMismatch)
}

func TestValidateUnavailableOperator(t *testing.T) {
	request := simpleRequest()
	request.Operators[0].AvailableDays = []int32{2, 3}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationUnavailableOperator)
}

func TestValidateInactiveOperator(t *testing.T) {
	request := simpleRequest()
	request.Operators[0].Status = domain.OperatorStatusSick
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationUnavailableOperator)
}

func TestValidateCoordinatorOnlyTask(t *testing.T) {
	request := simpleRequest()
	request.Tasks[0].CoordinatorOnly = true
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationSkillMismatch)
}

func TestValidateUnderstaffedWithTypeBreakdown(t *testing.T) {
	request := simpleRequest()
	request.Requirements[0].Defaults = []domain.TypeCount{{Type: domain.OperatorTypeRegular, Count: 2}}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
		},
	}
	request.Days = []int32{1}

	violations := Validate(request, DefaultParameters(), result)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnderstaffed, violations[0].Kind)
	assert.Equal(t, int64(10), violations[0].TaskID)
	assert.Equal(t, int32(1), violations[0].Day)
	assert.Equal(t, domain.OperatorTypeRegular, violations[0].Type)
	assert.Equal(t, int32(1), violations[0].Shortfall)
}

func TestValidateFlexCoversRegular(t *testing.T) {
	request := simpleRequest()
	request.Days = []int32{1}
	request.Operators[1].Type = domain.OperatorTypeFlex
	request.Requirements[0].Defaults = []domain.TypeCount{{Type: domain.OperatorTypeRegular, Count: 2}}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 1, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Empty(t, violations)

	// 关闭机动工顶替后应报缺口
	parameters := DefaultParameters()
	parameters.FlexCoversRegular = false
	violations = Validate(request, parameters, result)
	assert.Contains(t, kindsOf(violations), ViolationUnderstaffed)
}

func TestValidateOverstaffed(t *testing.T) {
	request := simpleRequest()
	request.Days = []int32{1}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 1, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationOverstaffed)
}

func TestValidateOverstaffedOrderIsStable(t *testing.T) {
	request := simpleRequest()
	request.Days = []int32{1, 2}
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 2, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 2, OperatorID: 2, TaskID: taskRef(10)},
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 1, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	require.Len(t, violations, 2)
	assert.Equal(t, ViolationOverstaffed, violations[0].Kind)
	assert.Equal(t, int32(1), violations[0].Day)
	assert.Equal(t, ViolationOverstaffed, violations[1].Kind)
	assert.Equal(t, int32(2), violations[1].Day)

	// 重复校验的输出完全一致
	require.Equal(t, violations, Validate(request, DefaultParameters(), result))
}

func TestValidateLockedViolated(t *testing.T) {
	request := simpleRequest()
	request.Days = []int32{1}
	request.Cells = []domain.AssignmentCell{
		{Day: 1, OperatorID: 1, TaskID: taskRef(10), Locked: true},
	}

	// 结果中没有保留锁定格子
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Contains(t, kindsOf(violations), ViolationLockedViolated)
}

func TestValidatePinnedBrokenIsSoft(t *testing.T) {
	request := simpleRequest()
	request.Days = []int32{1}
	request.Cells = []domain.AssignmentCell{
		{Day: 1, OperatorID: 1, TaskID: taskRef(10), Pinned: true},
	}

	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationSoftRuleBroken, violations[0].Kind)
	assert.False(t, HasHardViolation(violations))
}

func TestValidateMaxConsecutiveDaysOnTask(t *testing.T) {
	request := simpleRequest()
	parameters := DefaultParameters()
	parameters.MaxConsecutiveDaysOnTask = 2

	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 2, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 3, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 4, OperatorID: 2, TaskID: taskRef(10)},
			{Day: 5, OperatorID: 2, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, parameters, result)
	softCount := 0
	for _, v := range violations {
		if v.Kind == ViolationSoftRuleBroken {
			softCount++
			assert.Equal(t, int64(1), v.OperatorID)
			assert.Equal(t, int32(3), v.Day)
		}
	}
	assert.Equal(t, 1, softCount)
}

func TestValidateConsecutiveHeavy(t *testing.T) {
	request := simpleRequest()
	request.Tasks[0].Heavy = true
	parameters := DefaultParameters()
	parameters.AllowConsecutiveHeavy = false

	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 2, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, parameters, result)
	assert.Contains(t, kindsOf(violations), ViolationSoftRuleBroken)
}

func TestValidateCleanSchedule(t *testing.T) {
	request := simpleRequest()
	result := &domain.ScheduleResult{
		Cells: []domain.AssignmentCell{
			{Day: 1, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 2, OperatorID: 2, TaskID: taskRef(10)},
			{Day: 3, OperatorID: 1, TaskID: taskRef(10)},
			{Day: 4, OperatorID: 2, TaskID: taskRef(10)},
			{Day: 5, OperatorID: 1, TaskID: taskRef(10)},
		},
	}

	violations := Validate(request, DefaultParameters(), result)
	assert.Empty(t, violations)
}
