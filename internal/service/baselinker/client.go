// Package baselinker - синхронизация заказов с внешним API Baselinker.
package baselinker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const endpoint = "https://api.baselinker.com/connector.php"

// pageSize - Baselinker отдаёт максимум 100 заказов за вызов.
const pageSize = 100

type Client struct {
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// call - один вызов connector.php: форма token/method/parameters,
// параметры сериализуются в JSON.
func (c *Client) call(ctx context.Context, method string, parameters any, out any) error {
	const op = "baselinker.call"

	params, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	form := url.Values{}
	form.Set("token", c.token)
	form.Set("method", method)
	form.Set("parameters", string(params))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s: unexpected status %d", op, method, resp.StatusCode)
	}

	var status apiResponse
	body := json.NewDecoder(resp.Body)
	raw := json.RawMessage{}
	if err := body.Decode(&raw); err != nil {
		return fmt.Errorf("%s: %s: decode: %w", op, method, err)
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("%s: %s: decode status: %w", op, method, err)
	}
	if status.Status != "SUCCESS" {
		return fmt.Errorf("%s: %s: api error: %s", op, method, status.ErrorMessage)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: %s: decode payload: %w", op, method, err)
		}
	}
	return nil
}

type APIOrder struct {
	OrderID         int64        `json:"order_id"`
	DateAdd         int64        `json:"date_add"`
	OrderSourceID   int64        `json:"order_source_id"`
	OrderSource     string       `json:"order_source"`
	InvoiceFullname string       `json:"invoice_fullname"`
	InvoiceCompany  string       `json:"invoice_company"`
	Products        []APIProduct `json:"products"`
}

type APIProduct struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// GetOrders выкачивает все заказы начиная с dateFrom, страницами по 100.
// Следующая страница начинается с максимальной date_add плюс секунда.
func (c *Client) GetOrders(ctx context.Context, dateFrom int64) ([]APIOrder, error) {
	var all []APIOrder
	current := dateFrom

	for {
		var resp struct {
			Orders []APIOrder `json:"orders"`
		}
		params := map[string]any{
			"date_from":                   current,
			"get_unconfirmed_orders":      false,
			"include_custom_extra_fields": true,
		}
		if err := c.call(ctx, "getOrders", params, &resp); err != nil {
			return nil, err
		}
		if len(resp.Orders) == 0 {
			break
		}

		all = append(all, resp.Orders...)
		if len(resp.Orders) < pageSize {
			break
		}

		var last int64
		for _, o := range resp.Orders {
			if o.DateAdd > last {
				last = o.DateAdd
			}
		}
		current = last + 1
	}

	return all, nil
}

type ExtraField struct {
	ExtraFieldID int64  `json:"extra_field_id"`
	Name         string `json:"name"`
}

func (c *Client) GetOrderExtraFields(ctx context.Context) ([]ExtraField, error) {
	var resp struct {
		ExtraFields []ExtraField `json:"extra_fields"`
	}
	if err := c.call(ctx, "getOrderExtraFields", map[string]any{}, &resp); err != nil {
		return nil, err
	}
	return resp.ExtraFields, nil
}

// GetOrderTransactionData возвращает дату отгрузки ship_date_to,
// которая приходит то числом, то строкой.
func (c *Client) GetOrderTransactionData(ctx context.Context, orderID int64) (*time.Time, error) {
	var resp struct {
		ShipDateTo json.RawMessage `json:"ship_date_to"`
	}
	if err := c.call(ctx, "getOrderTransactionData", map[string]any{"order_id": orderID}, &resp); err != nil {
		return nil, err
	}
	return parseShipDate(resp.ShipDateTo), nil
}

func parseShipDate(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix == 0 {
			return nil
		}
		t := time.Unix(unix, 0)
		return &t
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(n, 0)
		return &t
	}
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// GetOrderSources - карта source_id -> "тип - аккаунт" для человекочитаемого
// названия источника заказа.
func (c *Client) GetOrderSources(ctx context.Context) (map[int64]string, error) {
	var resp struct {
		Sources map[string]map[string]string `json:"sources"`
	}
	if err := c.call(ctx, "getOrderSources", map[string]any{}, &resp); err != nil {
		return nil, err
	}

	sources := make(map[int64]string)
	for sourceType, accounts := range resp.Sources {
		for idStr, account := range accounts {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				continue
			}
			sources[id] = sourceType + " - " + account
		}
	}
	return sources, nil
}
