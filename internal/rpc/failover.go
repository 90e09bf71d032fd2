package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

var ErrNoProviders = errors.New("no providers configured")

// FailoverConfig defines runtime behavior of the failover client.
type FailoverConfig struct {
	ErrorThreshold int
}

func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{ErrorThreshold: 3}
}

// FailoverClient routes each call to the healthiest of several nodes. A
// call is sent exactly once; a transport failure is returned to the caller
// and moves later calls to the next node. JSON-RPC errors are answers from
// a live node and do not count against it.
type FailoverClient struct {
	mu        sync.Mutex
	providers []*Provider
	current   int
	config    FailoverConfig
}

var _ NetworkClient = (*FailoverClient)(nil)

func NewFailoverClient(config *FailoverConfig, providers ...*Provider) (*FailoverClient, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	cfg := DefaultFailoverConfig()
	if config != nil && config.ErrorThreshold > 0 {
		cfg.ErrorThreshold = config.ErrorThreshold
	}
	for _, p := range providers {
		logger.Info("Added provider", "name", p.Name, "url", p.URL)
	}
	return &FailoverClient{providers: providers, config: cfg}, nil
}

func (f *FailoverClient) CallRPC(ctx context.Context, method string, params any) (*RPCResponse, error) {
	p := f.bestProvider()
	logger.Debug("Routing RPC call", "method", method, "provider", p.Name)
	return f.execute(ctx, p, method, params)
}

// GetURL returns the URL of the provider that will serve the next call.
func (f *FailoverClient) GetURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.providers[f.current].URL
}

func (f *FailoverClient) Close() error {
	var errs []error
	for _, p := range f.providers {
		if err := p.Client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Providers returns the configured providers in priority order.
func (f *FailoverClient) Providers() []*Provider {
	return append([]*Provider(nil), f.providers...)
}

func (f *FailoverClient) execute(ctx context.Context, p *Provider, method string, params any) (*RPCResponse, error) {
	start := time.Now()
	resp, err := p.Client.CallRPC(ctx, method, params)
	elapsed := time.Since(start)

	if err == nil {
		p.Success(elapsed)
		return resp, nil
	}

	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		p.Success(elapsed)
		return resp, err
	}

	if ctx.Err() != nil {
		return nil, err
	}

	issue := analyzeError(err)
	if issue.MarkUnhealthy {
		logger.Warn("Blacklisting provider",
			"provider", p.Name,
			"error_type", issue.Reason,
			"blacklist_duration", issue.Cooldown,
		)
		p.Blacklist(issue.Cooldown)
	} else {
		p.Fail(f.config.ErrorThreshold)
	}
	f.advance(p)
	return nil, err
}

// bestProvider returns the first available provider starting at the current
// one. When every provider is blacklisted, the one whose blacklist ends
// first is recovered.
func (f *FailoverClient) bestProvider() *Provider {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.providers)
	for i := 0; i < n; i++ {
		idx := (f.current + i) % n
		p := f.providers[idx]
		if !p.IsAvailable() {
			continue
		}
		if p.CurrentState() == StateBlacklisted {
			logger.Info("Recovering expired blacklisted provider", "provider", p.Name)
			p.Recover()
		}
		if idx != f.current {
			logger.Info("Switching provider", "from", f.providers[f.current].Name, "to", p.Name)
			f.current = idx
		}
		return p
	}

	earliest := 0
	for i, p := range f.providers {
		if p.blacklistedUntil().Before(f.providers[earliest].blacklistedUntil()) {
			earliest = i
		}
	}
	p := f.providers[earliest]
	logger.Warn("No available providers, emergency recovery", "provider", p.Name)
	p.Recover()
	f.current = earliest
	return p
}

func (f *FailoverClient) advance(failed *Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.providers[f.current] == failed {
		f.current = (f.current + 1) % len(f.providers)
	}
}

// ProviderIssue represents an analyzed error state from a provider
type ProviderIssue struct {
	Reason        string
	Cooldown      time.Duration
	MarkUnhealthy bool
}

var errorPatterns = []struct {
	patterns []string
	reason   string
	cooldown time.Duration
}{
	{[]string{"rate limit", "429", "too many requests"}, "rate_limit", 5 * time.Minute},
	{[]string{"forbidden", "403"}, "forbidden", time.Hour},
	{[]string{"timeout", "deadline"}, "timeout", 3 * time.Minute},
	{[]string{"eof", "connection reset", "connection refused", "broken pipe", "no such host"}, "connection_error", 2 * time.Minute},
}

// analyzeError determines error type and suggests cooldown policy
func analyzeError(err error) ProviderIssue {
	msg := strings.ToLower(err.Error())
	for _, pattern := range errorPatterns {
		for _, p := range pattern.patterns {
			if strings.Contains(msg, p) {
				return ProviderIssue{Reason: pattern.reason, Cooldown: pattern.cooldown, MarkUnhealthy: true}
			}
		}
	}
	return ProviderIssue{Reason: "generic_error"}
}
