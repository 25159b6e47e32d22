package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/krishilink/krishi/internal/krishi/service"
)

// StatsHandler serves the ministry dashboard: platform totals, the
// driver leaderboard and the spreadsheet export.
type StatsHandler struct {
	svc *service.StatsService
}

func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Summary handles GET /stats/summary. All totals are derived from the
// freight rows at read time.
func (h *StatsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, summary)
}

// Leaderboard handles GET /stats/leaderboard.
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	drivers, err := h.svc.Leaderboard(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"items": drivers, "total": len(drivers)})
}

// Export handles GET /stats/export — the full activity report as an
// xlsx download.
func (h *StatsHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.ExportWorkbook(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
