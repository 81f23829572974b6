package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

func TestMergeShortfalls(t *testing.T) {
	merged := mergeShortfalls([]Shortfall{
		{TaskID: 2, Day: 1, Type: domain.OperatorTypeRegular, Shortfall: 1},
		{TaskID: 2, Day: 1, Type: domain.OperatorTypeRegular, Shortfall: 3},
		{TaskID: 1, Day: 2, Type: domain.OperatorTypeFlex, Shortfall: 1},
		{TaskID: 1, Day: 1, Type: domain.OperatorTypeRegular, Shortfall: 2},
	})

	require.Len(t, merged, 3)
	// 按天、任务、类型排序，同键保留最大缺口
	assert.Equal(t, Shortfall{TaskID: 1, Day: 1, Type: domain.OperatorTypeRegular, Shortfall: 2}, merged[0])
	assert.Equal(t, Shortfall{TaskID: 2, Day: 1, Type: domain.OperatorTypeRegular, Shortfall: 3}, merged[1])
	assert.Equal(t, Shortfall{TaskID: 1, Day: 2, Type: domain.OperatorTypeFlex, Shortfall: 1}, merged[2])
}

func TestInfeasibleErrorMessage(t *testing.T) {
	err := &InfeasibleError{Shortfalls: []Shortfall{
		{TaskID: 3, Day: 2, Type: domain.OperatorTypeRegular, Shortfall: 1},
	}}
	assert.Contains(t, err.Error(), "任务 3")
	assert.Contains(t, err.Error(), "第 2 天")
}

func TestSlotJitterDeterministicAndBounded(t *testing.T) {
	a := slotJitter(42, 1, 1, 0, 7)
	b := slotJitter(42, 1, 1, 0, 7)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 1.0)

	// 不同的种子或槽位标识应产生不同的扰动
	assert.NotEqual(t, a, slotJitter(43, 1, 1, 0, 7))
	assert.NotEqual(t, a, slotJitter(42, 1, 1, 0, 8))
}
