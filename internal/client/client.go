// Package client is a minimal Twilio REST API client covering message
// origination.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client is a Twilio REST API client scoped to one account.
type Client struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
}

// Config configures the Twilio client.
type Config struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a new Twilio client. Credentials fall back to the
// TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN environment variables.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	accountSID := cfg.AccountSID
	if accountSID == "" {
		accountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if accountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}

	authToken := cfg.AuthToken
	if authToken == "" {
		authToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if authToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com/2010-04-01"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// AccountSID returns the account SID.
func (c *Client) AccountSID() string {
	return c.accountSID
}

// Message represents a Twilio message resource.
type Message struct {
	SID         string `json:"sid"`
	AccountSID  string `json:"account_sid"`
	To          string `json:"to"`
	From        string `json:"from"`
	Body        string `json:"body"`
	Status      string `json:"status"`
	Direction   string `json:"direction"`
	NumMedia    string `json:"num_media"`
	NumSegments string `json:"num_segments"`
	Price       string `json:"price"`
	PriceUnit   string `json:"price_unit"`
	ErrorCode   *int   `json:"error_code"`
	URI         string `json:"uri"`
	DateCreated string `json:"date_created"`
	DateSent    string `json:"date_sent"`
}

// SendMessageParams are parameters for sending a message.
type SendMessageParams struct {
	To             string
	From           string
	Body           string
	MediaURL       string // optional MMS media URL
	StatusCallback string // webhook for delivery status updates
}

// SendMessage creates an outbound message. Errors are surfaced as returned;
// the client never retries.
func (c *Client) SendMessage(ctx context.Context, params *SendMessageParams) (*Message, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	data := url.Values{}
	data.Set("To", params.To)
	data.Set("From", params.From)
	data.Set("Body", params.Body)

	if params.MediaURL != "" {
		data.Set("MediaUrl", params.MediaURL)
	}
	if params.StatusCallback != "" {
		data.Set("StatusCallback", params.StatusCallback)
	}

	var msg Message
	if err := c.post(ctx, endpoint, data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessage retrieves a message by SID.
func (c *Client) GetMessage(ctx context.Context, messageSID string) (*Message, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages/%s.json", c.baseURL, c.accountSID, messageSID)

	var msg Message
	if err := c.get(ctx, endpoint, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Error represents a Twilio API error.
type Error struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// post performs a POST request with form data.
func (c *Client) post(ctx context.Context, url string, data url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, result)
}

// do executes a request with authentication.
func (c *Client) do(req *http.Request, result any) error {
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(body, &apiErr); err != nil {
			return fmt.Errorf("twilio error: %s", string(body))
		}
		return &apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
