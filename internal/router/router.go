package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stayhub/internal/db"
	"github.com/stayhub/internal/handler"
	"github.com/stayhub/internal/middleware"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.Default()

	// 小程序和管理后台跨域访问
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", api.Register)
			auth.POST("/login", api.Login)
			auth.POST("/wechat-login", api.WechatLogin)

			account := auth.Group("")
			account.Use(middleware.AuthRequired())
			{
				account.GET("/profile", api.Profile)
				account.PUT("/profile", api.UpdateProfile)
				account.POST("/wechat-bind", api.WechatBind)
			}
		}

		hotels := apiGroup.Group("/hotels")
		{
			hotels.GET("", api.ListHotels)
			hotels.GET("/home-ads", api.ListHomeAds)
			// 兼容旧版：单条广告
			hotels.GET("/home-ad", api.GetHomeAd)
			hotels.GET("/:id", api.GetHotel)

			managed := hotels.Group("")
			managed.Use(middleware.AuthRequired(), middleware.RoleRequired(db.RoleMerchant, db.RoleAdmin))
			{
				managed.POST("", api.CreateHotel)
				managed.PUT("/:id", api.UpdateHotel)
				managed.PUT("/:id/status", api.SetHotelStatus)
				managed.PUT("/:id/home-ad", api.SetHotelHomeAd)
				managed.DELETE("/:id", api.DeleteHotel)
			}
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(middleware.AuthRequired())
		{
			bookings.GET("", api.ListBookings)
			bookings.GET("/:id", api.GetBooking)
			bookings.POST("", api.CreateBooking)
			bookings.PUT("/:id", api.UpdateBookingStatus)
		}

		holidays := apiGroup.Group("/holidays")
		{
			// 公共查询和价格预览无需登录，供日历展示和下单前报价
			holidays.GET("", api.ListHolidays)
			holidays.GET("/quote", api.QuoteStay)

			admin := holidays.Group("")
			admin.Use(middleware.AuthRequired(), middleware.RoleRequired(db.RoleAdmin))
			{
				admin.GET("/manage", api.ListHolidayManage)
				admin.POST("", api.CreateHoliday)
				admin.PUT("/:id", api.UpdateHoliday)
				admin.DELETE("/:id", api.DeleteHoliday)
				admin.POST("/sync", api.SyncHolidays)
			}
		}

		statistics := apiGroup.Group("/statistics")
		statistics.Use(middleware.AuthRequired(), middleware.RoleRequired(db.RoleMerchant, db.RoleAdmin))
		{
			statistics.GET("/revenue", api.RevenueStatistics)
		}

		maps := apiGroup.Group("/map")
		{
			maps.GET("/regeo", api.MapRegeo)
			maps.GET("/search", api.MapSearch)
		}
	}

	return r
}
