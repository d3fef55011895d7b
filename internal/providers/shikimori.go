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

// ShikimoriClient fetches catalog metadata from the Shikimori API.
type ShikimoriClient struct {
	baseURL string
	client  *resty.Client
}

// NewShikimoriClient creates a metadata client for the given base URL.
func NewShikimoriClient(baseURL, userAgent string) *ShikimoriClient {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(retryTransient)
	return &ShikimoriClient{baseURL: baseURL, client: client}
}

// SetProxy routes requests through the given proxy URL.
func (c *ShikimoriClient) SetProxy(proxyURL string) {
	if proxyURL != "" {
		c.client.SetProxy(proxyURL)
	}
}

// retryTransient retries network failures and transient server responses.
// A 404 means the record does not exist and is never retried.
func retryTransient(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

type shikimoriBrief struct {
	ID      int    `json:"id"`
	Russian string `json:"russian"`
	Name    string `json:"name"`
}

type shikimoriDetail struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Russian       string `json:"russian"`
	Description   string `json:"description"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Rating        string `json:"rating"`
	Score         string `json:"score"`
	Episodes      int    `json:"episodes"`
	EpisodesAired int    `json:"episodes_aired"`
	AiredOn       string `json:"aired_on"`
	Image         struct {
		Original string `json:"original"`
	} `json:"image"`
	Genres []struct {
		Name    string `json:"name"`
		Russian string `json:"russian"`
	} `json:"genres"`
	Studios []struct {
		Name string `json:"name"`
	} `json:"studios"`
}

// FetchPage returns one listing page of catalog entries.
func (c *ShikimoriClient) FetchPage(ctx context.Context, params PageParams) ([]PageItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(params.Page),
			"limit": strconv.Itoa(params.Limit),
			"order": params.Order,
		}).
		Get(c.baseURL + "/api/animes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", params.Page, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("page %d fetch returned status %d", params.Page, resp.StatusCode())
	}

	var briefs []shikimoriBrief
	if err := json.Unmarshal(resp.Body(), &briefs); err != nil {
		return nil, fmt.Errorf("failed to decode page %d: %w", params.Page, err)
	}

	items := make([]PageItem, 0, len(briefs))
	for _, b := range briefs {
		title := b.Russian
		if title == "" {
			title = b.Name
		}
		items = append(items, PageItem{ID: strconv.Itoa(b.ID), Title: title})
	}
	return items, nil
}

// FetchDetail returns the full metadata record for one entry. Returns
// (nil, nil) when the entry does not exist upstream.
func (c *ShikimoriClient) FetchDetail(ctx context.Context, externalID string) (*Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.baseURL + "/api/animes/" + externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entry %s: %w", externalID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("entry %s fetch returned status %d", externalID, resp.StatusCode())
	}

	var detail shikimoriDetail
	if err := json.Unmarshal(resp.Body(), &detail); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", externalID, err)
	}

	score, _ := strconv.ParseFloat(detail.Score, 64)

	record := &Record{
		ID:            strconv.Itoa(detail.ID),
		Title:         detail.Russian,
		TitleEn:       detail.Name,
		Description:   detail.Description,
		Kind:          detail.Kind,
		Status:        detail.Status,
		Rating:        detail.Rating,
		Score:         score,
		Episodes:      detail.Episodes,
		EpisodesAired: detail.EpisodesAired,
		AiredOn:       detail.AiredOn,
	}
	if record.Title == "" {
		record.Title = detail.Name
	}
	if detail.Image.Original != "" {
		record.PosterURL = c.baseURL + detail.Image.Original
	}
	for _, g := range detail.Genres {
		record.Genres = append(record.Genres, Genre{Name: g.Name, Native: g.Russian})
	}
	for _, s := range detail.Studios {
		record.Studios = append(record.Studios, s.Name)
	}
	return record, nil
}

// ProbeDelivery is not supported by the metadata provider.
func (c *ShikimoriClient) ProbeDelivery(ctx context.Context, deliveryID string) (*DeliveryRecord, error) {
	return nil, fmt.Errorf("shikimori has no delivery endpoint")
}
