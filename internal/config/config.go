package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr                 string
	Port                       string
	DatabasePath               string
	JWTSecret                  string
	GinMode                    string
	HolidaySyncURLTemplate     string
	HolidayDefaultDiscountRate float64
	TencentMapKey              string
	BaiduMapAK                 string
	WechatAppID                string
	WechatSecret               string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "stayhub.db"
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		jwtSecret = "stayhub-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	// 为空时由同步服务回退到内置的 timor.tech 模板
	syncTemplate := strings.TrimSpace(os.Getenv("HOLIDAY_SYNC_URL_TEMPLATE"))

	discountRate := 0.9
	if raw := strings.TrimSpace(os.Getenv("HOLIDAY_DEFAULT_DISCOUNT_RATE")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 && parsed <= 1 {
			discountRate = parsed
		}
	}

	return AppConfig{
		ListenAddr:                 listenAddr,
		Port:                       port,
		DatabasePath:               databasePath,
		JWTSecret:                  jwtSecret,
		GinMode:                    ginMode,
		HolidaySyncURLTemplate:     syncTemplate,
		HolidayDefaultDiscountRate: discountRate,
		TencentMapKey:              strings.TrimSpace(os.Getenv("TENCENT_MAP_KEY")),
		BaiduMapAK:                 strings.TrimSpace(os.Getenv("BAIDU_MAP_AK")),
		WechatAppID:                strings.TrimSpace(os.Getenv("WECHAT_APPID")),
		WechatSecret:               strings.TrimSpace(os.Getenv("WECHAT_SECRET")),
	}
}
