package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/warehouse-crew/task-roster/backend/internal/config"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)

	h.Mux.Route("/schedule", func(r chi.Router) {
		r.Post("/", h.GenerateSchedule)
		// 外部测试套件通过这个接口独立确认硬约束是否满足
		r.Post("/validate", h.ValidateSchedule)
	})
}
