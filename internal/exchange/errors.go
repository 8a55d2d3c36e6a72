package exchange

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError: отказ торгового API: лимиты, авторизация, отклонённый ордер.
type APIError struct {
	Status  int // HTTP статус
	Code    int // код Binance, например -2010
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance error: http=%d code=%d msg=%s", e.Status, e.Code, e.Message)
}

// RateLimited: 429 или 418 (бан по IP).
func (e *APIError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests || e.Status == http.StatusTeapot
}

func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Code == -2014 || e.Code == -2015
}

// IsAPIError: удобная обёртка над errors.As.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
