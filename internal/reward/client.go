// Package reward pays victories through the token-sender service.
package reward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrTransferFailed = errors.New("reward transfer failed")

type sendRequest struct {
	Symbol string      `json:"symbol"`
	Amount json.Number `json:"amount"`
}

type sendResponse struct {
	Success     bool `json:"success"`
	Transaction struct {
		Hash      string `json:"hash"`
		Symbol    string `json:"symbol"`
		Recipient string `json:"recipient"`
	} `json:"transaction"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for the sender at baseURL. A zero timeout leaves
// calls bounded only by their context.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("reward"),
	}
}

// Transfer sends amount of symbol to address and returns the transaction
// hash. It is never retried: a retry after an ambiguous failure could pay
// twice.
func (c *Client) Transfer(ctx context.Context, address, amount, symbol string) (string, error) {
	body, err := json.Marshal(sendRequest{Symbol: symbol, Amount: json.Number(amount)})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrTransferFailed, err)
	}

	endpoint := c.baseURL + "/send/" + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransferFailed, err)
	}

	var out sendResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if out.Message != "" {
			msg += ": " + out.Message
		}
		return "", fmt.Errorf("%w: sender returned %d %s", ErrTransferFailed, resp.StatusCode, msg)
	}
	if !out.Success {
		return "", fmt.Errorf("%w: sender reported failure", ErrTransferFailed)
	}
	if out.Transaction.Hash == "" {
		return "", fmt.Errorf("%w: no transaction hash in response", ErrTransferFailed)
	}

	c.log.Info("transfer confirmed",
		zap.String("address", address),
		zap.String("symbol", symbol),
		zap.String("amount", amount),
		zap.String("tx", out.Transaction.Hash),
		zap.Duration("took", time.Since(start)))
	return out.Transaction.Hash, nil
}
