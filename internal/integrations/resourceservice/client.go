package resourceservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Client клиент для работы с ResourceService
// ResourceService владеет расписаниями сотрудников и по запросу
// материализует их слоты на конкретную дату
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ResourceService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// MaterializeSlots просит ResourceService материализовать слоты сотрудников
// услуги на указанную дату и возвращает ID шаблонов в зоне действия
//
// Таймаут трактуется как "шаблонов нет": запрос доступности деградирует
// до пустого результата, а не блокируется и не падает
func (c *Client) MaterializeSlots(ctx context.Context, tenantID, serviceID int64, date time.Time) ([]int64, error) {
	url := fmt.Sprintf("%s/internal/tenants/%d/services/%d/slots/materialize?date=%s",
		c.baseURL, tenantID, serviceID, date.Format(domain.DateFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn("ResourceService materialize timed out: tenant=%d, service=%d, date=%s",
				tenantID, serviceID, date.Format(domain.DateFormat))
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		// Услуга без расписаний сотрудников - шаблонов нет
		return []int64{}, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var result MaterializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return result.ShiftIDs, nil
}

// isTimeout проверяет, что ошибка вызвана истечением таймаута или дедлайна
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
