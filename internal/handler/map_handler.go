package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MapRegeo 逆地理编码代理
func (a *API) MapRegeo(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(c.Query("latitude")), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(c.Query("longitude")), 64)
	if latErr != nil || lngErr != nil {
		respondError(c, http.StatusBadRequest, "latitude/longitude 必须是数字")
		return
	}

	address, err := a.maps.Regeo(c.Request.Context(), lat, lng)
	if err != nil {
		log.Printf("map regeo failed: %v", err)
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", address)
}

// MapSearch 地点检索代理
func (a *API) MapSearch(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		respondError(c, http.StatusBadRequest, "keyword 不能为空")
		return
	}

	result, err := a.maps.Search(c.Request.Context(), keyword, strings.TrimSpace(c.Query("city")))
	if err != nil {
		log.Printf("map search failed: %v", err)
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", result)
}
