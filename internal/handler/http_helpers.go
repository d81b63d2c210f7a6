package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/service"
)

// respondOK 按统一信封返回成功结果
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": message, "data": data})
}

// respondError 按统一信封返回失败结果
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// respondServiceError 把服务层错误翻译为 HTTP 状态码
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHolidayRuleNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrHotelNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrHolidayRuleInvalid),
		errors.Is(err, service.ErrStayRangeInvalid),
		errors.Is(err, service.ErrSyncYearInvalid),
		errors.Is(err, service.ErrUserInvalid),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrHotelInvalid),
		errors.Is(err, service.ErrBookingInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrHotelForbidden),
		errors.Is(err, service.ErrBookingForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrWechatTaken):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrHolidaySyncUnavailable),
		errors.Is(err, service.ErrMapProviderUnavailable),
		errors.Is(err, service.ErrWechatUnavailable):
		respondError(c, http.StatusBadGateway, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
