package handler

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/middleware"
	"github.com/stayhub/internal/service"
)

type holidayRulePayload struct {
	Name         string   `json:"name"`
	HolidayType  string   `json:"holidayType"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	DiscountRate *float64 `json:"discountRate"`
	IsActive     *bool    `json:"isActive"`
	Notes        string   `json:"notes"`
}

type holidaySyncPayload struct {
	Year         int      `json:"year"`
	DiscountRate *float64 `json:"discountRate"`
}

func holidayRuleToJSON(rule db.HolidayRule) gin.H {
	return gin.H{
		"id":           rule.ID,
		"name":         rule.Name,
		"holidayType":  rule.HolidayType,
		"startDate":    rule.StartDate,
		"endDate":      rule.EndDate,
		"discountRate": rule.DiscountRate,
		"isActive":     rule.IsActive,
		"isAutoSynced": rule.IsAutoSynced,
		"source":       rule.Source,
		"syncYear":     rule.SyncYear,
		"notes":        rule.Notes,
	}
}

func (a *API) holidayRuleInput(payload holidayRulePayload, operatorID uint) service.HolidayRuleInput {
	rate := a.defaultDiscount
	if payload.DiscountRate != nil {
		rate = *payload.DiscountRate
	}
	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	operator := operatorID
	return service.HolidayRuleInput{
		Name:         payload.Name,
		HolidayType:  payload.HolidayType,
		StartDate:    payload.StartDate,
		EndDate:      payload.EndDate,
		DiscountRate: rate,
		IsActive:     isActive,
		Notes:        payload.Notes,
		OperatorID:   &operator,
	}
}

// ListHolidays 公共查询，供日历展示和价格预览使用
// 支持 startDate/endDate 闭区间过滤，activeOnly=false 时包含停用规则
func (a *API) ListHolidays(c *gin.Context) {
	var (
		rules []db.HolidayRule
		err   error
	)

	if c.Query("activeOnly") == "false" {
		rules, err = a.holidays.ListAll()
	} else {
		var filter *service.DateRange
		start := strings.TrimSpace(c.Query("startDate"))
		end := strings.TrimSpace(c.Query("endDate"))
		if start != "" || end != "" {
			filter = &service.DateRange{Start: start, End: end}
		}
		rules, err = a.holidays.ListActive(filter)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		items = append(items, holidayRuleToJSON(rule))
	}
	respondOK(c, "获取成功", items)
}

// ListHolidayManage 管理端查询，含停用规则，按开始日期倒序
func (a *API) ListHolidayManage(c *gin.Context) {
	rules, err := a.holidays.ListAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		items = append(items, holidayRuleToJSON(rule))
	}
	respondOK(c, "获取成功", items)
}

// CreateHoliday 手动新增节假日/活动规则
func (a *API) CreateHoliday(c *gin.Context) {
	var payload holidayRulePayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	rule, err := a.holidays.Create(a.holidayRuleInput(payload, middleware.CurrentUserID(c)))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "新增成功", holidayRuleToJSON(*rule))
}

// UpdateHoliday 编辑规则，手动编辑会把同步规则转为手动来源
func (a *API) UpdateHoliday(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var payload holidayRulePayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	rule, err := a.holidays.Update(id, a.holidayRuleInput(payload, middleware.CurrentUserID(c)))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "更新成功", holidayRuleToJSON(*rule))
}

// DeleteHoliday 删除规则
func (a *API) DeleteHoliday(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	if err := a.holidays.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "删除成功", nil)
}

// SyncHolidays 从外部日历同步法定节假日
// 覆盖目标年份的同步批次，手动规则不受影响
func (a *API) SyncHolidays(c *gin.Context) {
	var payload holidaySyncPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	year := payload.Year
	if year == 0 {
		year = time.Now().Year()
	}
	rate := a.defaultDiscount
	if payload.DiscountRate != nil {
		rate = *payload.DiscountRate
	}

	operator := middleware.CurrentUserID(c)
	result, err := a.sync.Sync(c.Request.Context(), year, rate, &operator)
	if err != nil {
		log.Printf("sync holiday rules for %d failed: %v", year, err)
		respondServiceError(c, err)
		return
	}
	respondOK(c, "同步成功", result)
}

// QuoteStay 价格预览：对 [checkIn, checkOut) 逐晚结算节假日折扣
// 预订页和小程序都调这里，保证与下单价格口径一致
func (a *API) QuoteStay(c *gin.Context) {
	basePrice, err := strconv.ParseFloat(strings.TrimSpace(c.Query("basePrice")), 64)
	if err != nil {
		basePrice = 0
	}

	quote, err := a.pricing.Quote(c.Query("checkIn"), c.Query("checkOut"), basePrice)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", quote)
}
