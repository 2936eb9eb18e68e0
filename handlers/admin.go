package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Benru1503/kazzaz-hours-log/config"
	"github.com/Benru1503/kazzaz-hours-log/middleware"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

type AdminHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	service   *shiftlogic.Service
	logger    *zap.Logger
}

func NewAdminHandler(cfg *config.Config, templates map[string]*template.Template, service *shiftlogic.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		config:    cfg,
		templates: templates,
		service:   service,
		logger:    logger,
	}
}

func (h *AdminHandler) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.config.StoreTimeout)
}

// StudentsPage shows the per-student progress table. The figures come from
// one aggregate query; nothing is recomputed here.
func (h *AdminHandler) StudentsPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanViewAllStudents() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	summaries, err := h.service.AllStudentsSummary(ctx)
	if err != nil {
		h.logger.Error("failed to load student summaries", zap.Error(err))
		http.Error(w, "Failed to load student summaries", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"User":      user,
		"Summaries": summaries,
		"Error":     r.URL.Query().Get("error"),
		"Success":   r.URL.Query().Get("success"),
	}
	h.templates["students"].ExecuteTemplate(w, "base", data)
}

// ReviewPage shows pending manual logs oldest first, so the longest-waiting
// submission is reviewed first.
func (h *AdminHandler) ReviewPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanReviewLogs() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	rows, err := h.service.AllPendingLogs(ctx)
	if err != nil {
		h.logger.Error("failed to load pending logs", zap.Error(err))
		http.Error(w, "Failed to load pending logs", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"User":    user,
		"Rows":    rows,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["review"].ExecuteTemplate(w, "base", data)
}

func (h *AdminHandler) ApproveLog(w http.ResponseWriter, r *http.Request) {
	h.reviewLog(w, r, true)
}

func (h *AdminHandler) RejectLog(w http.ResponseWriter, r *http.Request) {
	h.reviewLog(w, r, false)
}

func (h *AdminHandler) reviewLog(w http.ResponseWriter, r *http.Request, approve bool) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanReviewLogs() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/review?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseUint(r.FormValue("log_id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/admin/review?error=Invalid+log+ID", http.StatusSeeOther)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	if approve {
		_, err = h.service.ApproveLog(ctx, uint(id), user.ID)
	} else {
		_, err = h.service.RejectLog(ctx, uint(id), user.ID)
	}
	if err != nil {
		var notFound *shiftlogic.NotFoundError
		if errors.As(err, &notFound) {
			http.Redirect(w, r, "/admin/review?error=Log+not+found", http.StatusSeeOther)
			return
		}
		h.logger.Error("log review failed", zap.Uint("log_id", uint(id)), zap.Error(err))
		http.Redirect(w, r, "/admin/review?error=Failed+to+review+log", http.StatusSeeOther)
		return
	}

	action := "rejected"
	success := "Log+rejected"
	if approve {
		action = "approved"
		success = "Log+approved"
	}
	h.logger.Info("manual log reviewed",
		zap.Uint("log_id", uint(id)),
		zap.Uint("admin_id", user.ID),
		zap.String("action", action))
	http.Redirect(w, r, "/admin/review?success="+success, http.StatusSeeOther)
}

// ExportCSV downloads the all-students summary as CSV.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if !user.CanViewAllStudents() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := h.storeCtx(r)
	defer cancel()

	summaries, err := h.service.AllStudentsSummary(ctx)
	if err != nil {
		http.Error(w, "Failed to load student summaries", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("progress_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"Student", "Goal", "Shift Hours", "Approved Manual Hours", "Total Hours", "Progress %", "Pending Logs"})

	// Write data
	for _, s := range summaries {
		writer.Write([]string{
			s.FullName,
			fmt.Sprintf("%.0f", s.TotalGoal),
			fmt.Sprintf("%.2f", s.ShiftHours),
			fmt.Sprintf("%.2f", s.ApprovedManualHours),
			fmt.Sprintf("%.2f", s.TotalHours),
			fmt.Sprintf("%.1f", s.ProgressPercent),
			strconv.Itoa(s.PendingLogs),
		})
	}
}
