package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/middleware"
)

// RevenueStatistics 返回操作者可见范围内的营收汇总
func (a *API) RevenueStatistics(c *gin.Context) {
	summary, err := a.stats.RevenueSummaryFor(middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", summary)
}
