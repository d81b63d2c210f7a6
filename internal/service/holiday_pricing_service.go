package service

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

// ErrStayRangeInvalid 在入住区间或单价非法时由严格模式返回
var ErrStayRangeInvalid = errors.New("invalid stay range")

// StayPriceQuote 描述一次住宿的报价结果
// HolidayNames 按首次命中顺序去重，AppliedDiscountRates 去重后升序，
// 只收录真正打了折（rate < 1）的系数
type StayPriceQuote struct {
	OriginalPrice        float64   `json:"originalPrice"`
	TotalPrice           float64   `json:"totalPrice"`
	DiscountAmount       float64   `json:"discountAmount"`
	HolidayNights        int       `json:"holidayNights"`
	HolidayNames         []string  `json:"holidayNames"`
	AppliedDiscountRates []float64 `json:"appliedDiscountRates"`
}

// HolidayPricingService 基于节假日规则计算住宿价格
// 整个住宿区间只查一次规则，再在内存中逐晚解析折扣
type HolidayPricingService struct {
	rules *HolidayRuleService
}

// NewHolidayPricingService 构造 HolidayPricingService
func NewHolidayPricingService(gdb *gorm.DB) *HolidayPricingService {
	return &HolidayPricingService{rules: NewHolidayRuleService(gdb)}
}

// Quote 计算 [checkIn, checkOut) 的住宿报价
// 兼容模式：入参非法时返回全零报价而不是报错，老的预订页依赖这一行为
// 规则查询失败仍然报错，存储故障不能伪装成零元报价
func (s *HolidayPricingService) Quote(checkIn, checkOut string, nightlyBasePrice float64) (StayPriceQuote, error) {
	quote, err := s.QuoteStrict(checkIn, checkOut, nightlyBasePrice)
	if errors.Is(err, ErrStayRangeInvalid) {
		return emptyStayPriceQuote(), nil
	}
	return quote, err
}

// QuoteStrict 计算住宿报价，入参非法时返回 ErrStayRangeInvalid
// 要求 checkIn 严格早于 checkOut，nightlyBasePrice 为有限非负数
func (s *HolidayPricingService) QuoteStrict(checkIn, checkOut string, nightlyBasePrice float64) (StayPriceQuote, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return emptyStayPriceQuote(), ErrStayRangeInvalid
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return emptyStayPriceQuote(), ErrStayRangeInvalid
	}
	if !in.Before(out) {
		return emptyStayPriceQuote(), ErrStayRangeInvalid
	}
	if math.IsNaN(nightlyBasePrice) || math.IsInf(nightlyBasePrice, 0) || nightlyBasePrice < 0 {
		return emptyStayPriceQuote(), ErrStayRangeInvalid
	}

	lastNight := out.AddDate(0, 0, -1)
	candidates, err := s.rules.ListActive(&DateRange{
		Start: in.Format(dateLayout),
		End:   lastNight.Format(dateLayout),
	})
	if err != nil {
		return emptyStayPriceQuote(), err
	}

	quote := emptyStayPriceQuote()
	seenNames := make(map[string]bool)
	seenRates := make(map[float64]bool)

	for cursor := in; cursor.Before(out); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format(dateLayout)
		quote.OriginalPrice += nightlyBasePrice

		rule := pickCheapestRule(day, candidates)
		if rule == nil {
			quote.TotalPrice += nightlyBasePrice
			continue
		}

		quote.TotalPrice += nightlyBasePrice * rule.DiscountRate
		quote.HolidayNights++
		if !seenNames[rule.Name] {
			seenNames[rule.Name] = true
			quote.HolidayNames = append(quote.HolidayNames, rule.Name)
		}
		if rule.DiscountRate < 1 && !seenRates[rule.DiscountRate] {
			seenRates[rule.DiscountRate] = true
			quote.AppliedDiscountRates = append(quote.AppliedDiscountRates, rule.DiscountRate)
		}
	}

	quote.OriginalPrice = roundToCent(quote.OriginalPrice)
	quote.TotalPrice = roundToCent(quote.TotalPrice)
	quote.DiscountAmount = roundToCent(quote.OriginalPrice - quote.TotalPrice)
	slices.Sort(quote.AppliedDiscountRates)

	return quote, nil
}

// HolidayNameForDate 返回指定日期命中的节假日名称，无命中或日期非法时为空串
func (s *HolidayPricingService) HolidayNameForDate(date string) string {
	day, err := normalizeDate(date)
	if err != nil {
		return ""
	}

	candidates, err := s.rules.ListActive(&DateRange{Start: day, End: day})
	if err != nil {
		return ""
	}

	rule := pickCheapestRule(day, candidates)
	if rule == nil {
		return ""
	}
	return rule.Name
}

// pickCheapestRule 在候选规则中解析指定日期适用的一条
// 取折扣最低（对客人最便宜）的规则，折扣相同时取 id 最小的一条保证确定性
func pickCheapestRule(date string, candidates []db.HolidayRule) *db.HolidayRule {
	var best *db.HolidayRule
	for i := range candidates {
		rule := &candidates[i]
		if date < rule.StartDate || date > rule.EndDate {
			continue
		}
		if best == nil ||
			rule.DiscountRate < best.DiscountRate ||
			(rule.DiscountRate == best.DiscountRate && rule.ID < best.ID) {
			best = rule
		}
	}
	return best
}

func emptyStayPriceQuote() StayPriceQuote {
	return StayPriceQuote{
		HolidayNames:         []string{},
		AppliedDiscountRates: []float64{},
	}
}

// roundToCent 四舍五入到分
func roundToCent(v float64) float64 {
	return math.Round(v*100) / 100
}
