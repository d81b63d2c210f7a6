package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// ErrMapProviderUnavailable 在没有可用地图服务商或全部调用失败时返回
var ErrMapProviderUnavailable = errors.New("map provider unavailable")

const (
	tencentMapBaseURL = "https://apis.map.qq.com"
	baiduMapBaseURL   = "https://api.map.baidu.com"

	defaultMapTimeout = 8 * time.Second
)

// 腾讯返回 121 或带配额字样的提示视为额度用尽，需要切换备用服务商
var quotaMessagePattern = regexp.MustCompile(`(?i)上限|配额|quota|limit`)

// MapClient 代理地图逆地理编码和地点检索
// 腾讯地图优先，密钥缺失或配额用尽时回退到百度
type MapClient struct {
	http           httpDoer
	tencentKey     string
	baiduAK        string
	tencentBaseURL string
	baiduBaseURL   string
}

// GeoAddress 描述逆地理编码结果
type GeoAddress struct {
	Province       string `json:"province"`
	City           string `json:"city"`
	District       string `json:"district"`
	Address        string `json:"address"`
	MapProvider    string `json:"mapProvider"`
	FallbackNotice string `json:"fallbackNotice"`
}

// PlaceItem 描述一条地点检索结果
type PlaceItem struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Province  string  `json:"province"`
	City      string  `json:"city"`
	District  string  `json:"district"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// PlaceSearchResult 描述地点检索结果集
type PlaceSearchResult struct {
	Items          []PlaceItem `json:"items"`
	MapProvider    string      `json:"mapProvider"`
	FallbackNotice string      `json:"fallbackNotice"`
}

type tencentRegeoResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Result  struct {
		Address          string `json:"address"`
		AddressComponent struct {
			Province string `json:"province"`
			City     string `json:"city"`
			District string `json:"district"`
		} `json:"address_component"`
		FormattedAddresses struct {
			Recommend string `json:"recommend"`
		} `json:"formatted_addresses"`
	} `json:"result"`
}

type tencentSuggestionResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    []struct {
		Title    string `json:"title"`
		Address  string `json:"address"`
		Province string `json:"province"`
		City     string `json:"city"`
		District string `json:"district"`
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"data"`
}

type baiduRegeoResponse struct {
	Status int `json:"status"`
	Result struct {
		FormattedAddress string `json:"formatted_address"`
		AddressComponent struct {
			Province string `json:"province"`
			City     string `json:"city"`
			District string `json:"district"`
		} `json:"addressComponent"`
	} `json:"result"`
}

type baiduPlaceResponse struct {
	Status  int `json:"status"`
	Results []struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		Province string `json:"province"`
		City     string `json:"city"`
		Area     string `json:"area"`
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"results"`
}

// NewMapClient 构造 MapClient，两个密钥都允许为空（对应接口返回不可用）
func NewMapClient(tencentKey, baiduAK string) *MapClient {
	return &MapClient{
		http:           &http.Client{Timeout: defaultMapTimeout},
		tencentKey:     tencentKey,
		baiduAK:        baiduAK,
		tencentBaseURL: tencentMapBaseURL,
		baiduBaseURL:   baiduMapBaseURL,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，便于测试注入
func (c *MapClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: defaultMapTimeout}
		return
	}
	c.http = client
}

// SetBaseURLs 覆盖服务商地址，便于测试指向本地桩
func (c *MapClient) SetBaseURLs(tencentBase, baiduBase string) {
	if tencentBase != "" {
		c.tencentBaseURL = tencentBase
	}
	if baiduBase != "" {
		c.baiduBaseURL = baiduBase
	}
}

// Regeo 把经纬度解析为结构化地址
func (c *MapClient) Regeo(ctx context.Context, lat, lng float64) (*GeoAddress, error) {
	if c.tencentKey == "" && c.baiduAK == "" {
		return nil, fmt.Errorf("%w: no map key configured", ErrMapProviderUnavailable)
	}

	var tencentErr error
	if c.tencentKey != "" {
		var resp tencentRegeoResponse
		tencentErr = c.getJSON(ctx, c.tencentBaseURL+"/ws/geocoder/v1/", url.Values{
			"key":      {c.tencentKey},
			"location": {formatLatLng(lat, lng)},
		}, &resp)
		if tencentErr == nil && resp.Status == 0 {
			address := resp.Result.FormattedAddresses.Recommend
			if address == "" {
				address = resp.Result.Address
			}
			return &GeoAddress{
				Province:    resp.Result.AddressComponent.Province,
				City:        resp.Result.AddressComponent.City,
				District:    resp.Result.AddressComponent.District,
				Address:     address,
				MapProvider: "tencent",
			}, nil
		}
		if tencentErr == nil {
			tencentErr = fmt.Errorf("tencent regeo status %d: %s", resp.Status, resp.Message)
			if !isTencentQuotaExceeded(resp.Status, resp.Message) && c.baiduAK == "" {
				return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, tencentErr)
			}
		}
	}

	if c.baiduAK == "" {
		return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, tencentErr)
	}

	var resp baiduRegeoResponse
	if err := c.getJSON(ctx, c.baiduBaseURL+"/reverse_geocoding/v3/", url.Values{
		"ak":       {c.baiduAK},
		"output":   {"json"},
		"location": {formatLatLng(lat, lng)},
	}, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, err)
	}
	if resp.Status != 0 {
		return nil, fmt.Errorf("%w: baidu regeo status %d", ErrMapProviderUnavailable, resp.Status)
	}

	result := &GeoAddress{
		Province:    resp.Result.AddressComponent.Province,
		City:        resp.Result.AddressComponent.City,
		District:    resp.Result.AddressComponent.District,
		Address:     resp.Result.FormattedAddress,
		MapProvider: "baidu",
	}
	if tencentErr != nil {
		result.FallbackNotice = "腾讯地图服务不可用，已切换百度地图"
	}
	return result, nil
}

// Search 按关键字检索地点，可限定城市
func (c *MapClient) Search(ctx context.Context, keyword, city string) (*PlaceSearchResult, error) {
	if c.tencentKey == "" && c.baiduAK == "" {
		return nil, fmt.Errorf("%w: no map key configured", ErrMapProviderUnavailable)
	}

	var tencentErr error
	if c.tencentKey != "" {
		params := url.Values{
			"key":     {c.tencentKey},
			"keyword": {keyword},
		}
		if city != "" {
			params.Set("region", city)
		}

		var resp tencentSuggestionResponse
		tencentErr = c.getJSON(ctx, c.tencentBaseURL+"/ws/place/v1/suggestion", params, &resp)
		if tencentErr == nil && resp.Status == 0 {
			items := make([]PlaceItem, 0, len(resp.Data))
			for _, entry := range resp.Data {
				items = append(items, PlaceItem{
					Name:      entry.Title,
					Address:   entry.Address,
					Province:  entry.Province,
					City:      entry.City,
					District:  entry.District,
					Longitude: entry.Location.Lng,
					Latitude:  entry.Location.Lat,
				})
			}
			return &PlaceSearchResult{Items: items, MapProvider: "tencent"}, nil
		}
		if tencentErr == nil {
			tencentErr = fmt.Errorf("tencent search status %d: %s", resp.Status, resp.Message)
			if !isTencentQuotaExceeded(resp.Status, resp.Message) && c.baiduAK == "" {
				return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, tencentErr)
			}
		}
	}

	if c.baiduAK == "" {
		return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, tencentErr)
	}

	params := url.Values{
		"ak":     {c.baiduAK},
		"query":  {keyword},
		"output": {"json"},
	}
	if city != "" {
		params.Set("region", city)
	}

	var resp baiduPlaceResponse
	if err := c.getJSON(ctx, c.baiduBaseURL+"/place/v2/search", params, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapProviderUnavailable, err)
	}
	if resp.Status != 0 {
		return nil, fmt.Errorf("%w: baidu search status %d", ErrMapProviderUnavailable, resp.Status)
	}

	items := make([]PlaceItem, 0, len(resp.Results))
	for _, entry := range resp.Results {
		items = append(items, PlaceItem{
			Name:      entry.Name,
			Address:   entry.Address,
			Province:  entry.Province,
			City:      entry.City,
			District:  entry.Area,
			Longitude: entry.Location.Lng,
			Latitude:  entry.Location.Lat,
		})
	}

	result := &PlaceSearchResult{Items: items, MapProvider: "baidu"}
	if tencentErr != nil {
		result.FallbackNotice = "腾讯地图服务不可用，已切换百度地图"
	}
	return result, nil
}

func (c *MapClient) getJSON(ctx context.Context, endpoint string, params url.Values, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("map provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func isTencentQuotaExceeded(status int, message string) bool {
	return status == 121 || quotaMessagePattern.MatchString(message)
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
