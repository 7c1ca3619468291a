package customerservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент справочника клиентов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetCustomer получает клиента по ID. Неактивный клиент считается отсутствующим.
func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	url := fmt.Sprintf("%s/internal/customers/%d", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrCustomerNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var customer Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if !customer.IsActive {
		return nil, ErrCustomerNotFound
	}

	return &customer, nil
}

// VerifyCustomer проверяет клиента с graceful degradation:
// при недоступности сервиса возвращает ErrServiceDegraded, запись не блокируется.
func (c *Client) VerifyCustomer(ctx context.Context, customerID int64) error {
	_, err := c.GetCustomer(ctx, customerID)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCustomerNotFound) {
		c.log.Info("Customer not found: customer_id=%d", customerID)
		return err
	}

	c.log.Error("CustomerService unavailable, applying graceful degradation for customer_id=%d: %v", customerID, err)
	return fmt.Errorf("%w: customer_id=%d, error=%v", ErrServiceDegraded, customerID, err)
}
