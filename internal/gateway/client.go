package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the chat bridge's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) GetConfig(ctx context.Context) (*BridgeConfig, error) {
	var config BridgeConfig
	if err := c.doRequest(ctx, http.MethodGet, "/config", nil, &config); err != nil {
		c.logger.Error("Failed to get bridge config", zap.Error(err))
		return nil, err
	}
	return &config, nil
}

// SendMessage posts a text reply into a room.
func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	req := ReplyRequest{
		Type: "text",
		Room: room,
		Data: message,
	}

	if err := c.doRequest(ctx, http.MethodPost, "/reply", req, nil); err != nil {
		c.logger.Error("Failed to send message",
			zap.Error(err),
			zap.String("room", room),
		)
		return err
	}

	return nil
}

func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.GetConfig(ctx)
	return err == nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return errors.NewAPIError("failed to marshal request", 400, map[string]any{
				"url": url,
			}).WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAPIError("request failed", 503, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.NewAPIError(
			fmt.Sprintf("gateway API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":  url,
				"body": string(bodyBytes),
			},
		)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return errors.NewAPIError("failed to decode response", 502, map[string]any{
				"url": url,
			}).WithCause(err)
		}
	}

	return nil
}
