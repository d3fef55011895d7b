package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// KodikClient fetches delivery information from the Kodik API.
type KodikClient struct {
	baseURL string
	token   string
	client  *resty.Client
}

// NewKodikClient creates a delivery client for the given base URL and token.
func NewKodikClient(baseURL, token, userAgent string) *KodikClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(retryTransient)
	return &KodikClient{baseURL: baseURL, token: token, client: client}
}

// SetProxy routes requests through the given proxy URL.
func (c *KodikClient) SetProxy(proxyURL string) {
	if proxyURL != "" {
		c.client.SetProxy(proxyURL)
	}
}

type kodikResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Quality     string `json:"quality"`
	ShikimoriID string `json:"shikimori_id"`
	Translation struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"translation"`
	Seasons map[string]Season `json:"seasons"`
}

type kodikListResponse struct {
	Total   int           `json:"total"`
	Results []kodikResult `json:"results"`
}

// FetchPage returns one listing page of delivery entries.
func (c *KodikClient) FetchPage(ctx context.Context, params PageParams) ([]PageItem, error) {
	list, err := c.get(ctx, "/list", map[string]string{
		"types": "anime-serial,anime",
		"limit": strconv.Itoa(params.Limit),
		"page":  strconv.Itoa(params.Page),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", params.Page, err)
	}

	items := make([]PageItem, 0, len(list.Results))
	for _, r := range list.Results {
		id := r.ShikimoriID
		if id == "" {
			continue
		}
		items = append(items, PageItem{ID: id, Title: r.Title})
	}
	return items, nil
}

// FetchDetail is not supported by the delivery provider; all metadata comes
// from the metadata provider.
func (c *KodikClient) FetchDetail(ctx context.Context, externalID string) (*Record, error) {
	return nil, fmt.Errorf("kodik has no metadata endpoint")
}

// ProbeDelivery looks up the delivery record for a delivery id. Returns
// (nil, nil) when the delivery provider has no entry for it.
func (c *KodikClient) ProbeDelivery(ctx context.Context, deliveryID string) (*DeliveryRecord, error) {
	list, err := c.get(ctx, "/search", map[string]string{
		"id":            deliveryID,
		"with_episodes": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to probe delivery for %s: %w", deliveryID, err)
	}
	if len(list.Results) == 0 {
		return nil, nil
	}

	r := list.Results[0]
	return &DeliveryRecord{
		ID:              r.ID,
		Title:           r.Title,
		Link:            r.Link,
		Quality:         r.Quality,
		TranslationType: r.Translation.Type,
		Voice:           r.Translation.Title,
		Seasons:         r.Seasons,
	}, nil
}

func (c *KodikClient) get(ctx context.Context, path string, params map[string]string) (*kodikListResponse, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetQueryParams(params).
		Get(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return &kodikListResponse{}, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode())
	}

	var list kodikListResponse
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return &list, nil
}
