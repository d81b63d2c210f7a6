package db

import "gorm.io/gorm"

// 节假日类型：official 为法定节假日，custom 为酒店自定义日期，campaign 为营销活动。
const (
	HolidayTypeOfficial = "official"
	HolidayTypeCustom   = "custom"
	HolidayTypeCampaign = "campaign"
)

// HolidayRule 定义了一条有名字的日期区间折扣规则
// StartDate/EndDate 为 YYYY-MM-DD 闭区间，允许不同规则互相重叠，
// 重叠时由定价引擎在查询期取最低折扣解决
// IsAutoSynced/Source/SyncYear 标记规则来源：手动录入为 manual，
// 同步批次带上来源标识和年份，重新同步时按 (source, sync_year) 整批替换
type HolidayRule struct {
	gorm.Model
	Name         string  `gorm:"size:100;not null"`
	HolidayType  string  `gorm:"size:20;not null;default:custom;index"`
	StartDate    string  `gorm:"type:text;not null;index:idx_holiday_rules_range"`
	EndDate      string  `gorm:"type:text;not null;index:idx_holiday_rules_range"`
	DiscountRate float64 `gorm:"not null;default:0.9"`
	IsActive     bool    `gorm:"not null;index"`
	IsAutoSynced bool    `gorm:"not null;default:false"`
	Source       string  `gorm:"size:100;not null;default:manual;index:idx_holiday_rules_sync"`
	SourceURL    string  `gorm:"size:500"`
	SyncYear     *int    `gorm:"index:idx_holiday_rules_sync"`
	Notes        string
	CreatedBy    *uint
	UpdatedBy    *uint
}

// TableName 与历史数据表保持一致
func (HolidayRule) TableName() string {
	return "holiday_rules"
}
