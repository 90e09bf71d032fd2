package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
	"github.com/fystack/rooch-wallet-plugin/pkg/ratelimiter"
)

// NetworkClient is the transport boundary: a method name and params in,
// a decoded JSON-RPC response out.
type NetworkClient interface {
	CallRPC(ctx context.Context, method string, params any) (*RPCResponse, error)
	GetURL() string
	Close() error
}

type BaseClient struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	rateLimiter *ratelimiter.RateLimiter

	rpcID int64
	mutex sync.Mutex
}

func NewBaseClient(baseURL string, headers map[string]string, timeout time.Duration, rateLimiter *ratelimiter.RateLimiter) *BaseClient {
	return &BaseClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		headers:     headers,
		rateLimiter: rateLimiter,
		rpcID:       1,
	}
}

func (c *BaseClient) CallRPC(ctx context.Context, method string, params any) (*RPCResponse, error) {
	c.mutex.Lock()
	reqID := c.rpcID
	c.rpcID++
	c.mutex.Unlock()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if params == nil {
		params = []any{}
	}
	req := &RPCRequest{ID: reqID, JSONRPC: JSONRPCVersion, Method: method, Params: params}
	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return &rpcResp, rpcResp.Error
	}
	return &rpcResp, nil
}

func (c *BaseClient) do(ctx context.Context, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	logger.Debug("HTTP request completed", "url", c.baseURL, "elapsed", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, c.baseURL, string(data))
	}
	return data, nil
}

func (c *BaseClient) GetURL() string { return c.baseURL }
func (c *BaseClient) Close() error   { return nil }
