// Package qa 调用外部问答服务，调用经过熔断器保护.
package qa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/tracing"
)

var (
	// ErrDisabled 问答服务未启用.
	ErrDisabled = errors.New("qa service disabled")
	// ErrUnavailable 问答服务不可达或返回错误.
	ErrUnavailable = errors.New("qa service unavailable")
	// ErrCircuitOpen 熔断器打开，暂不调用问答服务.
	ErrCircuitOpen = errors.New("qa circuit open")
	// ErrEmptyQuestion 问题为空.
	ErrEmptyQuestion = errors.New("question is required")
)

// maxErrorBody 读取错误响应体的上限.
const maxErrorBody = 4 << 10

// Answer 问答结果.
type Answer struct {
	Answer         string   `json:"answer"`
	Context        string   `json:"context,omitempty"`
	ExpandedQuery  string   `json:"expandedQuery,omitempty"`
	RelevanceScore *float64 `json:"relevanceScore,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer         string   `json:"answer"`
	Context        *string  `json:"context"`
	ExpandedQuery  *string  `json:"expanded_query"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// Asker 问答接口.
type Asker interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

// Client 问答服务 HTTP 客户端.
type Client struct {
	enabled bool
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// Option 客户端选项.
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New 根据配置创建客户端；熔断器关闭时直接调用.
func New(cfg *configs.QAConfig, cb *configs.CircuitBreakerConfig, opts ...Option) *Client {
	c := &Client{
		enabled: cfg.Enabled,
		url:     strings.TrimRight(cfg.Endpoint, "/") + cfg.AskPath,
		http:    &http.Client{Timeout: cfg.Timeout},
	}

	if cb != nil && cb.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(breakerSettings(cb))
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// breakerSettings 把配置转换为 gobreaker 设置，按失败比例熔断.
func breakerSettings(cfg *configs.CircuitBreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "qa",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    cfg.Interval(),
		Timeout:     cfg.OpenTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		// 调用方取消不算服务失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// URL 返回问答接口地址.
func (c *Client) URL() string { return c.url }

// State 返回熔断器状态，未启用时为 disabled.
func (c *Client) State() string {
	if c.breaker == nil {
		return "disabled"
	}

	return c.breaker.State().String()
}

// Ask 提交问题并返回答案.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if c.breaker == nil {
		return c.do(ctx, question)
	}

	res, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, question)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}

	if err != nil {
		return nil, err
	}

	return res.(*Answer), nil
}

func (c *Client) do(ctx context.Context, question string) (*Answer, error) {
	body, err := sonic.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ask request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var raw askResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	ans := &Answer{Answer: raw.Answer, RelevanceScore: raw.RelevanceScore}
	if raw.Context != nil {
		ans.Context = *raw.Context
	}

	if raw.ExpandedQuery != nil {
		ans.ExpandedQuery = *raw.ExpandedQuery
	}

	return ans, nil
}
