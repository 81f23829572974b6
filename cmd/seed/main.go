package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/warehouse-crew/task-roster/backend/internal/scheduler"
	"github.com/warehouse-crew/task-roster/backend/internal/utils"
)

// 生成一个随机排班请求，并用每种算法各跑一遍
// 用于本地冒烟测试和观察各算法的目标得分差异
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	operatorCount := flag.Int("operators", 20, "操作员数量")
	taskCount := flag.Int("tasks", 5, "任务数量")
	seed := flag.Int64("seed", 42, "引擎随机种子")
	flag.Parse()

	request := utils.GenerateRandomRequest(*operatorCount, *taskCount)
	logger.Info("已生成随机排班请求", "operators", *operatorCount, "tasks", *taskCount)

	algorithms := []scheduler.Algorithm{
		scheduler.AlgorithmGreedy,
		scheduler.AlgorithmMaxMatching,
		scheduler.AlgorithmFeasibility,
		scheduler.AlgorithmGreedyTabu,
	}

	for _, algorithm := range algorithms {
		parameters := scheduler.DefaultParameters()
		parameters.Algorithm = algorithm
		parameters.Seed = *seed

		sched, err := scheduler.New(parameters, request)
		if err != nil {
			logger.Error("无法创建排班器", "algorithm", algorithm, "error", err)
			continue
		}

		result, err := sched.Schedule()
		if err != nil {
			logger.Error("排班失败", "algorithm", algorithm, "error", err)
			continue
		}

		objectives := sched.Evaluate(result)
		logger.Info("排班完成",
			"algorithm", algorithm,
			"cells", len(result.Cells),
			"warnings", len(result.Warnings),
			"fairness", objectives.Fairness,
			"balance", objectives.Balance,
			"skillQuality", objectives.SkillQuality,
			"preference", objectives.Preference,
			"variety", objectives.Variety,
		)
	}

	// 多目标模式单独跑，返回的是 Pareto 非支配集
	parameters := scheduler.DefaultParameters()
	parameters.Algorithm = scheduler.AlgorithmMultiObjective
	parameters.Seed = *seed

	sched, err := scheduler.New(parameters, request)
	if err != nil {
		logger.Error("无法创建排班器", "algorithm", parameters.Algorithm, "error", err)
		return
	}
	candidates, err := sched.ScheduleCandidates()
	if err != nil {
		logger.Error("排班失败", "algorithm", parameters.Algorithm, "error", err)
		return
	}
	for i, candidate := range candidates {
		logger.Info("Pareto 候选",
			"index", i,
			"fairness", candidate.Objectives.Fairness,
			"balance", candidate.Objectives.Balance,
			"skillQuality", candidate.Objectives.SkillQuality,
			"preference", candidate.Objectives.Preference,
			"variety", candidate.Objectives.Variety,
		)
	}
}
