package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"signal_bot/internal/config"
	"signal_bot/internal/models"
)

const defaultBaseURL = "https://api.binance.com"

// Binance: REST-клиент спотового API: свечи, баланс, рыночные ордера.
type Binance struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	recvWindow int64
	now        func() time.Time
}

func NewBinance(cfg *config.Config) *Binance {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Binance{
		http:       &http.Client{Timeout: 10 * time.Second},
		baseURL:    base,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		recvWindow: 5000,
		now:        time.Now,
	}
}

func (b *Binance) SetCreds(key, secret string) { b.apiKey, b.apiSecret = key, secret }

// ===== Public: свечи =====

// Candles отдаёт последние limit свечей, от старой к новой.
// Строка Binance: [openTime, open, high, low, close, volume, closeTime, ...]
func (b *Binance) Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	body, err := b.do(ctx, http.MethodGet, "/api/v3/klines", q, false)
	if err != nil {
		return nil, err
	}

	var rows [][]any
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		c := models.Candle{
			OpenTime:  time.UnixMilli(asInt64(row[0])).UTC(),
			Open:      asFloat(row[1]),
			High:      asFloat(row[2]),
			Low:       asFloat(row[3]),
			Close:     asFloat(row[4]),
			Volume:    asFloat(row[5]),
			CloseTime: time.UnixMilli(asInt64(row[6])).UTC(),
		}
		if c.Close <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ===== Private: баланс и ордера =====

type accountBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// Balance: свободный и заблокированный остаток по активу.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}

// Balances: все ненулевые остатки аккаунта.
func (b *Binance) Balances(ctx context.Context) ([]Balance, error) {
	body, err := b.do(ctx, http.MethodGet, "/api/v3/account", url.Values{}, true)
	if err != nil {
		return nil, err
	}
	var wrap struct {
		Balances []accountBalance `json:"balances"`
	}
	if err := sonic.Unmarshal(body, &wrap); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	res := make([]Balance, 0, len(wrap.Balances))
	for _, ab := range wrap.Balances {
		free, _ := strconv.ParseFloat(ab.Free, 64)
		locked, _ := strconv.ParseFloat(ab.Locked, 64)
		if free <= 0 && locked <= 0 {
			continue
		}
		res = append(res, Balance{Asset: ab.Asset, Free: free, Locked: locked})
	}
	return res, nil
}

// FreeBalance: свободный остаток актива; нет актива в ответе, 0.
func (b *Binance) FreeBalance(ctx context.Context, asset string) (float64, error) {
	balances, err := b.Balances(ctx)
	if err != nil {
		return 0, err
	}
	for _, bal := range balances {
		if strings.EqualFold(bal.Asset, asset) {
			return bal.Free, nil
		}
	}
	return 0, nil
}

// OrderAck: подтверждение рыночного ордера.
type OrderAck struct {
	OrderID     string
	Status      string
	ExecutedQty float64
	QuoteQty    float64
}

// PlaceMarketOrder ставит рыночный ордер на сумму quoteQty в котируемой валюте.
func (b *Binance) PlaceMarketOrder(ctx context.Context, symbol string, side models.Side, quoteQty float64) (OrderAck, error) {
	if side != models.SideBuy && side != models.SideSell {
		return OrderAck{}, fmt.Errorf("unsupported order side %q", side)
	}
	if quoteQty <= 0 {
		return OrderAck{}, errors.New("quoteQty must be > 0")
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("side", string(side))
	q.Set("type", "MARKET")
	q.Set("quoteOrderQty", strconv.FormatFloat(quoteQty, 'f', -1, 64))
	q.Set("newOrderRespType", "RESULT")

	body, err := b.do(ctx, http.MethodPost, "/api/v3/order", q, true)
	if err != nil {
		return OrderAck{}, err
	}
	var wrap struct {
		OrderID             int64  `json:"orderId"`
		Status              string `json:"status"`
		ExecutedQty         string `json:"executedQty"`
		CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	}
	if err := sonic.Unmarshal(body, &wrap); err != nil {
		return OrderAck{}, fmt.Errorf("decode order: %w", err)
	}
	executed, _ := strconv.ParseFloat(wrap.ExecutedQty, 64)
	quote, _ := strconv.ParseFloat(wrap.CummulativeQuoteQty, 64)
	return OrderAck{
		OrderID:     strconv.FormatInt(wrap.OrderID, 10),
		Status:      wrap.Status,
		ExecutedQty: executed,
		QuoteQty:    quote,
	}, nil
}

// ===== transport =====

func (b *Binance) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(b.apiSecret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func (b *Binance) do(ctx context.Context, method, path string, q url.Values, signed bool) ([]byte, error) {
	encoded := q.Encode()
	if signed {
		if b.apiKey == "" || b.apiSecret == "" {
			return nil, errors.New("api creds empty")
		}
		q.Set("recvWindow", strconv.FormatInt(b.recvWindow, 10))
		q.Set("timestamp", strconv.FormatInt(b.now().UTC().UnixMilli(), 10))
		// подпись считается по строке параметров, signature идёт последним
		encoded = q.Encode()
		encoded += "&signature=" + b.sign(encoded)
	}

	var (
		reqURL = b.baseURL + path
		body   io.Reader
	)
	if method == http.MethodGet {
		if encoded != "" {
			reqURL += "?" + encoded
		}
	} else {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", b.apiKey)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(rb))}
		var wrap struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := sonic.Unmarshal(rb, &wrap); err == nil && wrap.Msg != "" {
			apiErr.Code, apiErr.Message = wrap.Code, wrap.Msg
		}
		return nil, apiErr
	}
	return rb, nil
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	case int64:
		return float64(x)
	}
	return 0
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case int64:
		return x
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	}
	return 0
}
