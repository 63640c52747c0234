package llm

import (
	"context"
	"fmt"
	"sync"
)

// Middleware observes or rewrites the traffic of a Client
type Middleware interface {
	// Name identifies the middleware in logs
	Name() string

	// ProcessRequest may return a modified copy of the request; an error aborts the call
	ProcessRequest(ctx context.Context, req *ChatRequest) (*ChatRequest, error)

	// ProcessResponse sees every completed call, including failed ones
	ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error)

	// ProcessStreamEvent sees each streamed event before the consumer does
	ProcessStreamEvent(ctx context.Context, req *ChatRequest, event StreamEvent) (StreamEvent, error)
}

// MiddlewareChain runs requests and stream events through its middleware in
// insertion order and responses in reverse order
type MiddlewareChain struct {
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewMiddlewareChain creates a chain holding the given middleware
func NewMiddlewareChain(middlewares []Middleware) *MiddlewareChain {
	chain := &MiddlewareChain{}
	for _, middleware := range middlewares {
		chain.AddMiddleware(middleware)
	}
	return chain
}

// AddMiddleware appends a middleware to the chain
func (c *MiddlewareChain) AddMiddleware(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middleware)
}

// Names returns the middleware names in chain order
func (c *MiddlewareChain) Names() []string {
	middlewares := c.snapshot()
	names := make([]string, len(middlewares))
	for i, middleware := range middlewares {
		names[i] = middleware.Name()
	}
	return names
}

func (c *MiddlewareChain) snapshot() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Middleware(nil), c.middlewares...)
}

// ProcessRequest threads the request through every middleware. The first
// failure aborts the chain.
func (c *MiddlewareChain) ProcessRequest(ctx context.Context, req *ChatRequest) (*ChatRequest, error) {
	current := req
	for _, middleware := range c.snapshot() {
		next, err := middleware.ProcessRequest(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("middleware %s failed: %w", middleware.Name(), err)
		}
		current = next
	}
	return current, nil
}

// ProcessResponse threads the response through the chain in reverse order. A
// failing middleware is skipped; err is always returned unchanged.
func (c *MiddlewareChain) ProcessResponse(ctx context.Context, req *ChatRequest, resp *ChatResponse, err error) (*ChatResponse, error) {
	middlewares := c.snapshot()
	current := resp
	for i := len(middlewares) - 1; i >= 0; i-- {
		next, processErr := middlewares[i].ProcessResponse(ctx, req, current, err)
		if processErr != nil {
			continue
		}
		current = next
	}
	return current, err
}

// ProcessStreamEvent threads one stream event through the chain. A failing
// middleware leaves the event as it was.
func (c *MiddlewareChain) ProcessStreamEvent(ctx context.Context, req *ChatRequest, event StreamEvent) (StreamEvent, error) {
	current := event
	for _, middleware := range c.snapshot() {
		next, err := middleware.ProcessStreamEvent(ctx, req, current)
		if err != nil {
			continue
		}
		current = next
	}
	return current, nil
}
