package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-crew/task-roster/backend/internal/config"
	"github.com/warehouse-crew/task-roster/backend/internal/domain"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	h, err := NewHandler(cfg)
	require.NoError(t, err)
	h.RegisterRoutes()
	return h
}

func scheduleRequestBody() map[string]any {
	return map[string]any{
		"operators": []map[string]any{
			{
				"id": 1, "username": "wangwei1", "fullName": "王伟",
				"type": "正式工", "status": "在岗",
				"skills": []string{"理货"}, "availableDays": []int32{1, 2, 3, 4, 5},
			},
			{
				"id": 2, "username": "lifang2", "fullName": "李芳",
				"type": "正式工", "status": "在岗",
				"skills": []string{"理货"}, "availableDays": []int32{1, 2, 3, 4, 5},
			},
		},
		"tasks": []map[string]any{
			{"id": 10, "name": "理货任务", "requiredSkill": "理货"},
		},
		"days": []int32{1, 2, 3, 4, 5},
		"requirements": []map[string]any{
			{
				"taskID":   10,
				"defaults": []map[string]any{{"type": "正式工", "count": 1}},
			},
		},
	}
}

func postJSON(t *testing.T, h *Handler, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
}

func TestGenerateSchedule(t *testing.T) {
	h := newTestHandler(t)

	rec, resp := postJSON(t, h, "/schedule", scheduleRequestBody())
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success, resp.Message)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result domain.ScheduleResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Len(t, result.Cells, 5)
	assert.Empty(t, result.Warnings)
}

func TestGenerateScheduleMissingOperators(t *testing.T) {
	h := newTestHandler(t)

	body := scheduleRequestBody()
	delete(body, "operators")

	rec, resp := postJSON(t, h, "/schedule", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestGenerateScheduleMalformedBody(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader("{不是合法的 JSON"))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
}

func TestGenerateScheduleInfeasible(t *testing.T) {
	h := newTestHandler(t)

	body := scheduleRequestBody()
	body["requirements"] = []map[string]any{
		{
			"taskID":   10,
			"defaults": []map[string]any{{"type": "正式工", "count": 3}},
		},
	}
	body["parameters"] = map[string]any{
		"algorithm":        "feasibility",
		"strictSkillMatch": true,
		"respectLocked":    true,
		"respectPinned":    true,
	}

	rec, resp := postJSON(t, h, "/schedule", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "无法生成")
	// 缺口诊断随响应返回
	assert.NotNil(t, resp.Data)
}

func TestGenerateScheduleUnknownAlgorithm(t *testing.T) {
	h := newTestHandler(t)

	body := scheduleRequestBody()
	body["parameters"] = map[string]any{"algorithm": "quantum"}

	rec, resp := postJSON(t, h, "/schedule", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
}

func TestGenerateScheduleMultiObjective(t *testing.T) {
	h := newTestHandler(t)

	body := scheduleRequestBody()
	body["parameters"] = map[string]any{
		"algorithm":        "multi-objective",
		"strictSkillMatch": true,
		"respectLocked":    true,
		"respectPinned":    true,
		"maxIterations":    50,
		"candidateCount":   3,
		"weights": map[string]any{
			"fairness": 1.0, "balance": 0.5, "skillQuality": 1.0,
			"preference": 1.0, "variety": 0.3,
		},
	}

	rec, resp := postJSON(t, h, "/schedule", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success, resp.Message)

	candidates, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.NotEmpty(t, candidates)
	assert.LessOrEqual(t, len(candidates), 3)
}

func TestValidateSchedule(t *testing.T) {
	h := newTestHandler(t)

	body := map[string]any{
		"request": scheduleRequestBody(),
		"result": map[string]any{
			"cells": []map[string]any{
				// 同一个人同一天出现两次
				{"day": 1, "operatorID": 1, "taskID": 10},
				{"day": 1, "operatorID": 1, "taskID": 10},
			},
			"warnings": []any{},
		},
	}

	rec, resp := postJSON(t, h, "/schedule/validate", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success, resp.Message)

	violations, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.NotEmpty(t, violations)
}
