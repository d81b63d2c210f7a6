package service

import (
	"sync"

	"github.com/stayhub/internal/db"
)

// HolidayRuleCache 持有一份启用规则的快照，供需要高频逐日查询的进程使用
// （例如日历视图逐格渲染）。快照需要显式 Refresh，不做隐式刷新；
// 规则变更后由调用方 Invalidate 或重新 Refresh
type HolidayRuleCache struct {
	mu     sync.RWMutex
	rules  []db.HolidayRule
	loaded bool
	source *HolidayRuleService
}

// NewHolidayRuleCache 构造 HolidayRuleCache
func NewHolidayRuleCache(source *HolidayRuleService) *HolidayRuleCache {
	return &HolidayRuleCache{source: source}
}

// Refresh 从存储重新加载快照，可按日期区间收窄
func (c *HolidayRuleCache) Refresh(filter *DateRange) error {
	rules, err := c.source.ListActive(filter)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.rules = rules
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Invalidate 清空快照，下一次查询前需要重新 Refresh
func (c *HolidayRuleCache) Invalidate() {
	c.mu.Lock()
	c.rules = nil
	c.loaded = false
	c.mu.Unlock()
}

// Loaded 返回快照是否已加载
func (c *HolidayRuleCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// RuleForDate 在快照中解析指定日期适用的规则
// 解析口径与定价引擎一致：折扣最低者优先，同折扣取 id 最小；
// 无命中或快照未加载时返回 nil，返回值为副本可安全修改
func (c *HolidayRuleCache) RuleForDate(date string) *db.HolidayRule {
	day, err := normalizeDate(date)
	if err != nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rule := pickCheapestRule(day, c.rules)
	if rule == nil {
		return nil
	}
	copied := *rule
	return &copied
}

// HolidayNameForDate 返回快照中指定日期命中的节假日名称，无命中时为空串
func (c *HolidayRuleCache) HolidayNameForDate(date string) string {
	rule := c.RuleForDate(date)
	if rule == nil {
		return ""
	}
	return rule.Name
}
