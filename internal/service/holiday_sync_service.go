package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stayhub/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHolidaySyncUnavailable 在远程抓取失败、返回不可解析或无节假日数据时返回
	// 空结果按失败处理，避免用空批次静默清掉已有的同步数据
	ErrHolidaySyncUnavailable = errors.New("holiday sync unavailable")
	// ErrSyncYearInvalid 在同步年份超出 2000-2100 时返回
	ErrSyncYearInvalid = errors.New("sync year must be between 2000 and 2100")
)

const (
	// OfficialSyncSource 官方节假日同步来源标识
	OfficialSyncSource = "timor.tech"

	defaultSyncURLTemplate = "https://timor.tech/api/holiday/year/{year}"
	defaultSyncTimeout     = 8 * time.Second
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HolidaySyncService 从外部日历接口同步法定节假日并落库为折扣规则
// 同一 (source, year) 的旧同步批次整体替换，手动规则不受影响
type HolidaySyncService struct {
	rules       *HolidayRuleService
	http        httpDoer
	urlTemplate string
}

// SyncResult 描述一次同步的结果
type SyncResult struct {
	Count  int    `json:"count"`
	Source string `json:"source"`
	Year   int    `json:"year"`
}

// HolidayPeriod 描述合并后的连续节假日区间
type HolidayPeriod struct {
	Name      string
	StartDate string
	EndDate   string
}

type holidayDay struct {
	date string
	name string
}

// 远程接口兼容两种返回形态：
// { holiday: { "<date>": { holiday: bool, name: string } } }
// { data: [ { date, holiday|isOffDay, name|holidayName } ] }
type syncPayload struct {
	Holiday map[string]syncDayDetail `json:"holiday"`
	Data    []syncDayEntry           `json:"data"`
}

type syncDayDetail struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
}

type syncDayEntry struct {
	Date        string `json:"date"`
	Holiday     bool   `json:"holiday"`
	IsOffDay    bool   `json:"isOffDay"`
	Name        string `json:"name"`
	HolidayName string `json:"holidayName"`
}

// NewHolidaySyncService 构造 HolidaySyncService
// urlTemplate 为空时使用内置 timor.tech 模板，{year} 会被替换为目标年份
func NewHolidaySyncService(gdb *gorm.DB, urlTemplate string) *HolidaySyncService {
	template := strings.TrimSpace(urlTemplate)
	if template == "" {
		template = defaultSyncURLTemplate
	}
	return &HolidaySyncService{
		rules:       NewHolidayRuleService(gdb),
		http:        &http.Client{Timeout: defaultSyncTimeout},
		urlTemplate: template,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，便于测试注入
func (s *HolidaySyncService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: defaultSyncTimeout}
		return
	}
	s.http = client
}

// Sync 同步指定年份的法定节假日
// discountRate 不在 (0, 1] 时回退到默认九折；成功后旧批次被整体替换
func (s *HolidaySyncService) Sync(ctx context.Context, year int, discountRate float64, operatorID *uint) (SyncResult, error) {
	if year < 2000 || year > 2100 {
		return SyncResult{}, ErrSyncYearInvalid
	}
	if discountRate <= 0 || discountRate > 1 {
		discountRate = DefaultHolidayDiscountRate
	}

	requestURL := strings.ReplaceAll(s.urlTemplate, "{year}", strconv.Itoa(year))

	payload, err := s.fetchPayload(ctx, requestURL)
	if err != nil {
		return SyncResult{}, err
	}

	periods := mergeHolidayPeriods(extractHolidayDays(payload))
	if len(periods) == 0 {
		return SyncResult{}, fmt.Errorf("%w: no holiday days in remote feed", ErrHolidaySyncUnavailable)
	}

	syncYear := year
	rules := make([]db.HolidayRule, 0, len(periods))
	for _, period := range periods {
		rules = append(rules, db.HolidayRule{
			Name:         period.Name,
			HolidayType:  db.HolidayTypeOfficial,
			StartDate:    period.StartDate,
			EndDate:      period.EndDate,
			DiscountRate: discountRate,
			IsActive:     true,
			IsAutoSynced: true,
			Source:       OfficialSyncSource,
			SourceURL:    requestURL,
			SyncYear:     &syncYear,
			Notes:        fmt.Sprintf("同步来源：%s", OfficialSyncSource),
			CreatedBy:    operatorID,
			UpdatedBy:    operatorID,
		})
	}

	count, err := s.rules.ReplaceSyncedBatch(OfficialSyncSource, year, rules)
	if err != nil {
		return SyncResult{}, err
	}

	return SyncResult{Count: count, Source: OfficialSyncSource, Year: year}, nil
}

func (s *HolidaySyncService) fetchPayload(ctx context.Context, requestURL string) (*syncPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHolidaySyncUnavailable, err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHolidaySyncUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: remote returned status %d", ErrHolidaySyncUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHolidaySyncUnavailable, err)
	}

	var payload syncPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: remote returned invalid JSON", ErrHolidaySyncUnavailable)
	}
	return &payload, nil
}

// extractHolidayDays 从远程载荷中提取 (日期, 名称) 对
// 丢弃非节假日、空名称和非法日期的条目
func extractHolidayDays(payload *syncPayload) []holidayDay {
	var days []holidayDay

	for rawDate, detail := range payload.Holiday {
		date, err := normalizeDate(rawDate)
		if err != nil || !detail.Holiday {
			continue
		}
		name := strings.TrimSpace(detail.Name)
		if name == "" {
			continue
		}
		days = append(days, holidayDay{date: date, name: name})
	}

	for _, entry := range payload.Data {
		date, err := normalizeDate(entry.Date)
		if err != nil || (!entry.Holiday && !entry.IsOffDay) {
			continue
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = strings.TrimSpace(entry.HolidayName)
		}
		if name == "" {
			continue
		}
		days = append(days, holidayDay{date: date, name: name})
	}

	return days
}

// mergeHolidayPeriods 把按天的节假日合并为连续区间
// 仅当下一天与当前区间严格相邻且同名时才并入，不同名的相邻假期不合并
func mergeHolidayPeriods(days []holidayDay) []HolidayPeriod {
	if len(days) == 0 {
		return nil
	}

	sorted := slices.Clone(days)
	slices.SortFunc(sorted, func(a, b holidayDay) int {
		return strings.Compare(a.date, b.date)
	})

	periods := []HolidayPeriod{}
	current := HolidayPeriod{
		Name:      sorted[0].name,
		StartDate: sorted[0].date,
		EndDate:   sorted[0].date,
	}

	for _, day := range sorted[1:] {
		if day.name == current.Name && isNextDay(current.EndDate, day.date) {
			current.EndDate = day.date
			continue
		}
		periods = append(periods, current)
		current = HolidayPeriod{Name: day.name, StartDate: day.date, EndDate: day.date}
	}

	return append(periods, current)
}

// isNextDay 判断 next 是否恰好是 prev 的后一天
func isNextDay(prev, next string) bool {
	parsed, err := time.Parse(dateLayout, prev)
	if err != nil {
		return false
	}
	return parsed.AddDate(0, 0, 1).Format(dateLayout) == next
}
