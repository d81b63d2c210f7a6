package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/middleware"
	"github.com/stayhub/internal/service"
)

type bookingPayload struct {
	HotelID        uint    `json:"hotelId"`
	GuestName      string  `json:"guestName"`
	GuestPhone     string  `json:"guestPhone"`
	GuestEmail     string  `json:"guestEmail"`
	CheckInDate    string  `json:"checkInDate"`
	CheckOutDate   string  `json:"checkOutDate"`
	NumberOfRooms  int     `json:"numberOfRooms"`
	NumberOfGuests int     `json:"numberOfGuests"`
	UnitPrice      float64 `json:"unitPrice"`
	Remarks        string  `json:"remarks"`
}

type bookingStatusPayload struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

func bookingToJSON(booking db.Booking) gin.H {
	item := gin.H{
		"id":             booking.ID,
		"bookingNo":      booking.BookingNo,
		"hotelId":        booking.HotelID,
		"userId":         booking.UserID,
		"guestName":      booking.GuestName,
		"guestPhone":     booking.GuestPhone,
		"guestEmail":     booking.GuestEmail,
		"checkInDate":    booking.CheckInDate,
		"checkOutDate":   booking.CheckOutDate,
		"numberOfRooms":  booking.NumberOfRooms,
		"numberOfGuests": booking.NumberOfGuests,
		"unitPrice":      booking.UnitPrice,
		"totalPrice":     booking.TotalPrice,
		"status":         booking.Status,
		"remarks":        booking.Remarks,
	}
	if booking.Hotel.ID != 0 {
		item["hotel"] = gin.H{
			"id":            booking.Hotel.ID,
			"name":          booking.Hotel.Name,
			"city":          booking.Hotel.City,
			"pricePerNight": booking.Hotel.PricePerNight,
		}
	}
	return item
}

// ListBookings 按角色返回可见订单
func (a *API) ListBookings(c *gin.Context) {
	filter := service.BookingFilter{Status: c.Query("status")}
	if raw := c.Query("hotelId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.HotelID = uint(id)
		}
	}

	bookings, err := a.bookings.ListForActor(middleware.CurrentUserID(c), middleware.CurrentRole(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingToJSON(booking))
	}
	respondOK(c, "获取成功", items)
}

// GetBooking 返回订单详情
func (a *API) GetBooking(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	booking, err := a.bookings.Get(middleware.CurrentUserID(c), middleware.CurrentRole(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "获取成功", bookingToJSON(*booking))
}

// CreateBooking 下单，总价由节假日定价引擎计算
func (a *API) CreateBooking(c *gin.Context) {
	var payload bookingPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	userID := middleware.CurrentUserID(c)
	booking, err := a.bookings.Create(&userID, service.BookingInput{
		HotelID:        payload.HotelID,
		GuestName:      payload.GuestName,
		GuestPhone:     payload.GuestPhone,
		GuestEmail:     payload.GuestEmail,
		CheckInDate:    payload.CheckInDate,
		CheckOutDate:   payload.CheckOutDate,
		NumberOfRooms:  payload.NumberOfRooms,
		NumberOfGuests: payload.NumberOfGuests,
		UnitPrice:      payload.UnitPrice,
		Remarks:        payload.Remarks,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "预订成功", bookingToJSON(*booking))
}

// UpdateBookingStatus 订单状态流转
func (a *API) UpdateBookingStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, 400, err.Error())
		return
	}

	var payload bookingStatusPayload
	if !bindJSON(c, &payload, "请求体格式错误") {
		return
	}

	booking, err := a.bookings.UpdateStatus(
		middleware.CurrentUserID(c), middleware.CurrentRole(c), id, payload.Status, payload.Remarks)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, "更新成功", bookingToJSON(*booking))
}
