package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHolidayRuleNotFound 在指定规则不存在时返回
	ErrHolidayRuleNotFound = errors.New("holiday rule not found")
	// ErrHolidayRuleInvalid 在规则字段校验失败时返回，包装具体原因
	ErrHolidayRuleInvalid = errors.New("invalid holiday rule")
)

const (
	// ManualSource 标记手动录入的规则来源
	ManualSource = "manual"
	// DefaultHolidayDiscountRate 节假日默认折扣系数：0.9 = 九折
	DefaultHolidayDiscountRate = 0.9

	dateLayout = "2006-01-02"
)

// HolidayRuleService 负责节假日折扣规则的存取
// 规则允许日期区间互相重叠，写入时不做去重，定价引擎在查询期解决
type HolidayRuleService struct {
	db *gorm.DB
}

// HolidayRuleInput 定义创建/更新规则时可配置字段
// DiscountRate 必须落在 (0, 1]，EndDate 省略时视为单日规则
type HolidayRuleInput struct {
	Name         string
	HolidayType  string
	StartDate    string
	EndDate      string
	DiscountRate float64
	IsActive     bool
	Notes        string
	OperatorID   *uint
}

// DateRange 描述闭区间日期过滤条件，Start/End 允许单边为空
type DateRange struct {
	Start string
	End   string
}

// NewHolidayRuleService 构造 HolidayRuleService
func NewHolidayRuleService(gdb *gorm.DB) *HolidayRuleService {
	return &HolidayRuleService{db: gdb}
}

// Create 手动新增规则，来源固定为 manual
func (s *HolidayRuleService) Create(input HolidayRuleInput) (*db.HolidayRule, error) {
	rule, err := normalizeHolidayRuleInput(input)
	if err != nil {
		return nil, err
	}

	rule.CreatedBy = input.OperatorID
	rule.UpdatedBy = input.OperatorID

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("create holiday rule: %w", err)
	}
	return rule, nil
}

// Update 全量替换规则字段
// 手动编辑会把同步来源重置为 manual：被编辑过的同步规则从此不再被重新同步覆盖
func (s *HolidayRuleService) Update(id uint, input HolidayRuleInput) (*db.HolidayRule, error) {
	var existing db.HolidayRule
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHolidayRuleNotFound
		}
		return nil, fmt.Errorf("get holiday rule: %w", err)
	}

	normalized, err := normalizeHolidayRuleInput(input)
	if err != nil {
		return nil, err
	}

	existing.Name = normalized.Name
	existing.HolidayType = normalized.HolidayType
	existing.StartDate = normalized.StartDate
	existing.EndDate = normalized.EndDate
	existing.DiscountRate = normalized.DiscountRate
	existing.IsActive = normalized.IsActive
	existing.Notes = normalized.Notes
	existing.IsAutoSynced = false
	existing.Source = ManualSource
	existing.SourceURL = ""
	existing.SyncYear = nil
	existing.UpdatedBy = input.OperatorID

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update holiday rule: %w", err)
	}
	return &existing, nil
}

// Delete 按 ID 删除规则
func (s *HolidayRuleService) Delete(id uint) error {
	var existing db.HolidayRule
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHolidayRuleNotFound
		}
		return fmt.Errorf("get holiday rule: %w", err)
	}

	if err := s.db.Delete(&existing).Error; err != nil {
		return fmt.Errorf("delete holiday rule: %w", err)
	}
	return nil
}

// ListActive 返回启用中的规则，可按日期区间过滤
// 过滤条件与规则区间做闭区间相交判断，排序固定为 startDate、endDate、id 升序
func (s *HolidayRuleService) ListActive(filter *DateRange) ([]db.HolidayRule, error) {
	query := s.db.Model(&db.HolidayRule{}).Where("is_active = ?", true)

	if filter != nil {
		start := strings.TrimSpace(filter.Start)
		end := strings.TrimSpace(filter.End)
		if start != "" && end != "" {
			query = query.Where("start_date <= ? AND end_date >= ?", end, start)
		} else if start != "" {
			query = query.Where("end_date >= ?", start)
		} else if end != "" {
			query = query.Where("start_date <= ?", end)
		}
	}

	var rules []db.HolidayRule
	if err := query.Order("start_date ASC, end_date ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list active holiday rules: %w", err)
	}
	return rules, nil
}

// ListAll 返回全部规则（含停用），供管理端查看
func (s *HolidayRuleService) ListAll() ([]db.HolidayRule, error) {
	var rules []db.HolidayRule
	if err := s.db.Order("start_date DESC, id DESC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list holiday rules: %w", err)
	}
	return rules, nil
}

// ReplaceSyncedBatch 替换指定来源和年份的同步批次
// 仅删除 isAutoSynced=true 的旧批次，手动规则即使日期重叠也不受影响；
// 删除和插入放在同一事务中，避免并发读者长时间看到半新半旧的数据
func (s *HolidayRuleService) ReplaceSyncedBatch(source string, syncYear int, rules []db.HolidayRule) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"source = ? AND sync_year = ? AND is_auto_synced = ?",
			source, syncYear, true,
		).Delete(&db.HolidayRule{}).Error; err != nil {
			return fmt.Errorf("delete synced batch: %w", err)
		}

		if len(rules) == 0 {
			return nil
		}
		if err := tx.Create(&rules).Error; err != nil {
			return fmt.Errorf("insert synced batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rules), nil
}

// normalizeHolidayRuleInput 校验并规范化手动录入字段
func normalizeHolidayRuleInput(input HolidayRuleInput) (*db.HolidayRule, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrHolidayRuleInvalid)
	}

	holidayType := strings.TrimSpace(input.HolidayType)
	if holidayType == "" {
		holidayType = db.HolidayTypeCustom
	}
	switch holidayType {
	case db.HolidayTypeOfficial, db.HolidayTypeCustom, db.HolidayTypeCampaign:
	default:
		return nil, fmt.Errorf("%w: holidayType must be official, custom or campaign", ErrHolidayRuleInvalid)
	}

	startDate, err := normalizeDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", ErrHolidayRuleInvalid)
	}

	endRaw := strings.TrimSpace(input.EndDate)
	if endRaw == "" {
		endRaw = startDate
	}
	endDate, err := normalizeDate(endRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", ErrHolidayRuleInvalid)
	}
	if endDate < startDate {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrHolidayRuleInvalid)
	}

	if input.DiscountRate <= 0 || input.DiscountRate > 1 {
		return nil, fmt.Errorf("%w: discountRate must be in (0, 1]", ErrHolidayRuleInvalid)
	}

	return &db.HolidayRule{
		Name:         name,
		HolidayType:  holidayType,
		StartDate:    startDate,
		EndDate:      endDate,
		DiscountRate: input.DiscountRate,
		IsActive:     input.IsActive,
		Notes:        strings.TrimSpace(input.Notes),
		IsAutoSynced: false,
		Source:       ManualSource,
	}, nil
}

// normalizeDate 校验 YYYY-MM-DD 并返回规范化文本
func normalizeDate(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	parsed, err := time.Parse(dateLayout, text)
	if err != nil {
		return "", err
	}
	return parsed.Format(dateLayout), nil
}
