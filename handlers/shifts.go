package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Benru1503/kazzaz-hours-log/config"
	"github.com/Benru1503/kazzaz-hours-log/middleware"
	"github.com/Benru1503/kazzaz-hours-log/models"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

type ShiftHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	service   *shiftlogic.Service
	logger    *zap.Logger
}

func NewShiftHandler(cfg *config.Config, templates map[string]*template.Template, service *shiftlogic.Service, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{
		config:    cfg,
		templates: templates,
		service:   service,
		logger:    logger,
	}
}

// storeCtx bounds the request's database work with the configured timeout.
func (h *ShiftHandler) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.config.StoreTimeout)
}

func (h *ShiftHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	progress, err := h.service.CalculateProgress(ctx, user.ID, user.Goal())
	if err != nil {
		h.logger.Error("failed to calculate progress", zap.Uint("user_id", user.ID), zap.Error(err))
		http.Error(w, "Failed to load progress", http.StatusInternalServerError)
		return
	}

	active, err := h.service.ActiveShift(ctx, user.ID)
	if err != nil {
		h.logger.Error("failed to load active shift", zap.Uint("user_id", user.ID), zap.Error(err))
		http.Error(w, "Failed to load active shift", http.StatusInternalServerError)
		return
	}

	shifts, err := h.service.Shifts(ctx, user.ID)
	if err != nil {
		http.Error(w, "Failed to load shifts", http.StatusInternalServerError)
		return
	}

	logs, err := h.service.ManualLogs(ctx, user.ID)
	if err != nil {
		http.Error(w, "Failed to load manual logs", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"User":        user,
		"Progress":    progress,
		"ActiveShift": active,
		"Shifts":      shifts,
		"Logs":        logs,
		"Categories":  models.Categories,
		"Error":       r.URL.Query().Get("error"),
		"Success":     r.URL.Query().Get("success"),
	}
	h.templates["dashboard"].ExecuteTemplate(w, "base", data)
}

func (h *ShiftHandler) CheckInPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	data := map[string]interface{}{
		"User":       user,
		"Categories": models.Categories,
		"Error":      r.URL.Query().Get("error"),
	}
	h.templates["checkin"].ExecuteTemplate(w, "base", data)
}

type checkInForm struct {
	Category    string `validate:"required"`
	Description string `validate:"required,max=500"`
}

func (h *ShiftHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/shifts/checkin?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	form := checkInForm{
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	}
	if err := validate.Struct(&form); err != nil {
		http.Redirect(w, r, "/shifts/checkin?error=Category+and+description+are+required", http.StatusSeeOther)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	shift, err := h.service.CheckIn(ctx, user.ID, models.Category(form.Category), form.Description)
	if err != nil {
		var conflict *shiftlogic.ConflictError
		var invalid *shiftlogic.ValidationError
		switch {
		case errors.As(err, &conflict):
			http.Redirect(w, r, "/dashboard?error="+url.QueryEscape(conflict.Message), http.StatusSeeOther)
		case errors.As(err, &invalid):
			http.Redirect(w, r, "/shifts/checkin?error="+url.QueryEscape(invalid.Error()), http.StatusSeeOther)
		default:
			h.logger.Error("check-in failed", zap.Uint("user_id", user.ID), zap.Error(err))
			http.Redirect(w, r, "/shifts/checkin?error=Failed+to+check+in", http.StatusSeeOther)
		}
		return
	}

	h.logger.Info("shift started",
		zap.Uint("user_id", user.ID),
		zap.Uint("shift_id", shift.ID),
		zap.String("category", string(shift.Category)))
	http.Redirect(w, r, "/dashboard?success=Checked+in", http.StatusSeeOther)
}

func (h *ShiftHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseUint(r.FormValue("shift_id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/dashboard?error=Invalid+shift+ID", http.StatusSeeOther)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	shift, err := h.service.CheckOut(ctx, uint(id), user.ID)
	if err != nil {
		var notFound *shiftlogic.NotFoundError
		if errors.As(err, &notFound) {
			http.Redirect(w, r, "/dashboard?error=Shift+not+found", http.StatusSeeOther)
			return
		}
		h.logger.Error("check-out failed", zap.Uint("shift_id", uint(id)), zap.Error(err))
		http.Redirect(w, r, "/dashboard?error=Failed+to+check+out", http.StatusSeeOther)
		return
	}

	h.logger.Info("shift completed",
		zap.Uint("shift_id", shift.ID),
		zap.Float64p("duration_minutes", shift.DurationMinutes))
	http.Redirect(w, r, "/dashboard?success=Checked+out", http.StatusSeeOther)
}

func (h *ShiftHandler) NewLogPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	data := map[string]interface{}{
		"User":       user,
		"Categories": models.Categories,
		"Error":      r.URL.Query().Get("error"),
		"Today":      time.Now().Format("2006-01-02"),
	}
	h.templates["log-form"].ExecuteTemplate(w, "base", data)
}

type manualLogForm struct {
	Date            string  `validate:"required,datetime=2006-01-02"`
	DurationMinutes float64 `validate:"required,gt=0,lte=1440"`
	Description     string  `validate:"required,max=500"`
	Category        string  `validate:"required"`
}

func (h *ShiftHandler) SubmitLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/logs/new?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	minutes, err := strconv.ParseFloat(r.FormValue("duration_minutes"), 64)
	if err != nil {
		http.Redirect(w, r, "/logs/new?error=Invalid+duration", http.StatusSeeOther)
		return
	}

	form := manualLogForm{
		Date:            r.FormValue("date"),
		DurationMinutes: minutes,
		Description:     r.FormValue("description"),
		Category:        r.FormValue("category"),
	}
	if err := validate.Struct(&form); err != nil {
		http.Redirect(w, r, "/logs/new?error=All+fields+are+required+and+duration+must+be+between+1+and+1440+minutes", http.StatusSeeOther)
		return
	}

	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		http.Redirect(w, r, "/logs/new?error=Invalid+date+format", http.StatusSeeOther)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	log, err := h.service.SubmitManualLog(ctx, user.ID, shiftlogic.ManualLogInput{
		Date:            date,
		DurationMinutes: form.DurationMinutes,
		Description:     form.Description,
		Category:        models.Category(form.Category),
	})
	if err != nil {
		var invalid *shiftlogic.ValidationError
		if errors.As(err, &invalid) {
			http.Redirect(w, r, "/logs/new?error="+url.QueryEscape(invalid.Error()), http.StatusSeeOther)
			return
		}
		h.logger.Error("manual log submission failed", zap.Uint("user_id", user.ID), zap.Error(err))
		http.Redirect(w, r, "/logs/new?error=Failed+to+submit+log", http.StatusSeeOther)
		return
	}

	h.logger.Info("manual log submitted",
		zap.Uint("user_id", user.ID),
		zap.Uint("log_id", log.ID),
		zap.Float64("duration_minutes", log.DurationMinutes))
	http.Redirect(w, r, "/dashboard?success=Hours+submitted+for+review", http.StatusSeeOther)
}
