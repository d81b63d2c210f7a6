package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/middleware"
	"github.com/stayhub/internal/service"
)

type hotelPayload struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	Longitude      *float64 `json:"longitude"`
	Latitude       *float64 `json:"latitude"`
	StarLevel      *int     `json:"starLevel"`
	PricePerNight  float64  `json:"pricePerNight"`
	TotalRooms     int      `json:"totalRooms"`
	AvailableRooms int      `json:"availableRooms"`
	CoverImage     string   `json:"coverImage"`
}

type hotelStatusPayload struct {
	Status string `json:"status"`
}

type homeAdPayload struct {
	Enabled      *bool  `json:"enabled"`
	ReviewStatus string `json:"reviewStatus"`
}

func hotelToJSON(hotel db.Hotel) gin.H {
	return gin.H{
		"id":             hotel.ID,
		"name":           hotel.Name,
		"description":    hotel.Description,
		"location":       hotel.Location,
		"city":           hotel.City,
		"longitude":      hotel.Longitude,
		"latitude":       hotel.Latitude,
		"rating":         hotel.Rating,
		"starLevel":      hotel.StarLevel,
		"pricePerNight":  hotel.PricePerNight,
		"totalRooms":     hotel.TotalRooms,
		"availableRooms": hotel.AvailableRooms,
		"coverImage":     hotel.CoverImage,
		"status":         hotel.Status,
		"isHomeAd":       hotel.IsHomeAd,
		"adStatus":       hotel.AdStatus,
		"merchantId":     hotel.MerchantID,
	}
}

func (p hotelPayload) toInput() service.HotelInput {
	return service.HotelInput{
		Name:           p.Name,
		Description:    p.Description,
		Location:       p.Location,
		City:           p.City,
		Longitude:      p.Longitude,
		Latitude:       p.Latitude,
		StarLevel:      p.StarLevel,
		PricePerNight:  p.PricePerNight,
		TotalRooms:     p.TotalRooms,
		AvailableRooms: p.AvailableRooms,
		CoverImage:     p.CoverImage,
	}
}

// ListHotels 返回酒店列表，支持城市/关键字/状态过滤
func (a *API) ListHotels(c *gin.Context) {
	filter := service.HotelFilter{
		City:    c.Query("city"),
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
	}
	if raw := c.Query("merchantId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.MerchantID = uint(id)
		}
	}

	hotels, err := a.hotels.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(hotels))
	for _, hotel := range hotels {
		items = append(items, hotelToJSON(hotel))
	}
	respondOK(c, "获取成功", items)
}

// ListHomeAds 返回首页推荐位酒店
func (a *API) ListHomeAds(c *gin.Context) {
	hotels, err := a.hotels.ListHomeAds()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(hotels))
	for _, hotel := range hotels {
		items = append(items, hotelToJSON(hotel))
	}
	respondOK(c, "获取成功", items)
}

// GetHotel 返回酒店详情
func (a *API) GetHotel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	hotel, err := a.hotels.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", hotelToJSON(*hotel))
}

// CreateHotel 商户创建酒店
func (a *API) CreateHotel(c *gin.Context) {
	var payload hotelPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	hotel, err := a.hotels.Create(middleware.CurrentUserID(c), payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "新增成功", hotelToJSON(*hotel))
}

// UpdateHotel 更新酒店信息
func (a *API) UpdateHotel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var payload hotelPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	hotel, err := a.hotels.Update(middleware.CurrentUserID(c), middleware.CurrentRole(c), id, payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "更新成功", hotelToJSON(*hotel))
}

// SetHotelStatus 管理员审核流转
func (a *API) SetHotelStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var payload hotelStatusPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	hotel, err := a.hotels.SetStatus(middleware.CurrentRole(c), id, payload.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "更新成功", hotelToJSON(*hotel))
}

// SetHotelHomeAd 广告位流程
// 商户：提交/取消广告申请（pending/none）；管理员：审核申请（approved/rejected）
func (a *API) SetHotelHomeAd(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var payload homeAdPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	if middleware.CurrentRole(c) == db.RoleMerchant {
		enabled := payload.Enabled == nil || *payload.Enabled
		hotel, err := a.hotels.ApplyHomeAd(middleware.CurrentUserID(c), id, enabled)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		message := "广告申请已提交，等待管理员审核"
		if !enabled {
			message = "广告申请已取消"
		}
		respondOK(c, message, hotelToJSON(*hotel))
		return
	}

	if payload.ReviewStatus != db.AdStatusApproved && payload.ReviewStatus != db.AdStatusRejected {
		respondError(c, 400, "管理员审核参数无效")
		return
	}

	hotel, err := a.hotels.ReviewHomeAd(middleware.CurrentRole(c), id, payload.ReviewStatus == db.AdStatusApproved)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := "广告审核通过并已投放"
	if payload.ReviewStatus == db.AdStatusRejected {
		message = "广告审核已拒绝"
	}
	respondOK(c, message, hotelToJSON(*hotel))
}

// GetHomeAd 兼容旧版单广告接口，返回最近更新的一条投放中的广告
func (a *API) GetHomeAd(c *gin.Context) {
	hotel, err := a.hotels.LatestHomeAd()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if hotel == nil {
		respondOK(c, "获取成功", nil)
		return
	}
	respondOK(c, "获取成功", hotelToJSON(*hotel))
}

// DeleteHotel 删除酒店
func (a *API) DeleteHotel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	if err := a.hotels.Delete(middleware.CurrentUserID(c), middleware.CurrentRole(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "删除成功", nil)
}
