package scheduler

import (
	"encoding/binary"
	"hash/fnv"
)

// slotJitter 根据种子和槽位标识生成 [0, 1) 上的确定性扰动
// 扰动只依赖于种子和槽位本身，和调用顺序无关，
// 因此相同的请求和种子总是产生完全相同的排班结果
func slotJitter(seed int64, taskID int64, day int32, index int32, operatorID int64) float64 {
	h := fnv.New64a()
	buf := make([]byte, 8)

	binary.BigEndian.PutUint64(buf, uint64(seed))
	h.Write(buf)
	binary.BigEndian.PutUint64(buf, uint64(taskID))
	h.Write(buf)
	binary.BigEndian.PutUint32(buf[:4], uint32(day))
	h.Write(buf[:4])
	binary.BigEndian.PutUint32(buf[:4], uint32(index))
	h.Write(buf[:4])
	binary.BigEndian.PutUint64(buf, uint64(operatorID))
	h.Write(buf)

	// 取高 53 位，保证能被 float64 精确表示
	return float64(h.Sum64()>>11) / float64(1<<53)
}
