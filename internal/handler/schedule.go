package handler

import (
	"errors"
	"net/http"

	"github.com/warehouse-crew/task-roster/backend/internal/domain"
	"github.com/warehouse-crew/task-roster/backend/internal/scheduler"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "服务正常", nil)
}

type scheduleRequest struct {
	Operators       []*domain.Operator           `json:"operators" validate:"required,min=1"`
	Tasks           []*domain.Task               `json:"tasks" validate:"required,min=1"`
	Days            []int32                      `json:"days" validate:"required,min=1"`
	Requirements    []domain.StaffingRequirement `json:"requirements"`
	Cells           []domain.AssignmentCell      `json:"cells"`
	ExcludedTaskIDs []int64                      `json:"excludedTaskIDs"`
	Parameters      *scheduler.Parameters        `json:"parameters"`
}

func (req *scheduleRequest) toDomain() *domain.ScheduleRequest {
	return &domain.ScheduleRequest{
		Operators:       req.Operators,
		Tasks:           req.Tasks,
		Days:            req.Days,
		Requirements:    req.Requirements,
		Cells:           req.Cells,
		ExcludedTaskIDs: req.ExcludedTaskIDs,
	}
}

// defaultParameters 用配置中的默认值补全请求中省略的引擎参数
func (h *Handler) defaultParameters() *scheduler.Parameters {
	e := h.config.Engine
	return &scheduler.Parameters{
		Algorithm:                scheduler.Algorithm(e.Algorithm),
		StrictSkillMatch:         e.StrictSkillMatch,
		RespectLocked:            true,
		RespectPinned:            true,
		FlexCoversRegular:        e.FlexCoversRegular,
		AllowConsecutiveHeavy:    e.AllowConsecutiveHeavy,
		MaxConsecutiveDaysOnTask: int32(e.MaxConsecutiveDaysOnTask),
		MaxIterations:            int32(e.MaxIterations),
		TimeBudgetMillis:         int64(e.TimeBudget),
		TabuListSize:             int32(e.TabuListSize),
		CandidateCount:           int32(e.CandidateCount),
		Weights: scheduler.ObjectiveWeights{
			Fairness:     e.FairnessWeight,
			Balance:      e.BalanceWeight,
			SkillQuality: e.SkillQualityWeight,
			Preference:   e.PreferenceWeight,
			Variety:      e.VarietyWeight,
		},
		Seed: e.Seed,
	}
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	parameters := req.Parameters
	if parameters == nil {
		parameters = h.defaultParameters()
	}

	sched, err := scheduler.New(parameters, req.toDomain())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if parameters.Algorithm == scheduler.AlgorithmMultiObjective {
		candidates, err := sched.ScheduleCandidates()
		if err != nil {
			h.scheduleError(w, r, err)
			return
		}
		h.successResponse(w, r, "排班成功", candidates)
		return
	}

	result, err := sched.Schedule()
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}
	h.successResponse(w, r, "排班成功", result)
}

// scheduleError 把引擎错误转换为响应
// 无解时把缺口诊断放进 data，方便调用方直接展示给用户
func (h *Handler) scheduleError(w http.ResponseWriter, r *http.Request, err error) {
	var infeasibleErr *scheduler.InfeasibleError
	switch {
	case errors.As(err, &infeasibleErr):
		h.errorResponse(w, r, err.Error(), infeasibleErr.Shortfalls)
	case errors.Is(err, scheduler.ErrConfiguration):
		h.errorResponse(w, r, err.Error(), nil)
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Request    scheduleRequest        `json:"request" validate:"required"`
		Result     *domain.ScheduleResult `json:"result" validate:"required"`
		Parameters *scheduler.Parameters  `json:"parameters"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	parameters := req.Parameters
	if parameters == nil {
		parameters = h.defaultParameters()
	}

	violations := scheduler.Validate(req.Request.toDomain(), parameters, req.Result)
	h.successResponse(w, r, "校验完成", violations)
}
