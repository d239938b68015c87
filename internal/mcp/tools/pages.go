package tools

import (
	"context"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/query"
)

// ListPages is one consumer's view over a filtered list. It keeps showing the
// last page while the page for new filters loads.
type ListPages[F any, T any] interface {
	Read(ctx context.Context, filters F) query.Result[[]T]
}

// sessionPages holds a ListPages per MCP session
type sessionPages[F any, T any] struct {
	newPages func() ListPages[F, T]

	mu        sync.Mutex
	bySession map[*sdkmcp.ServerSession]ListPages[F, T]
}

func newSessionPages[F any, T any](newPages func() ListPages[F, T]) *sessionPages[F, T] {
	return &sessionPages[F, T]{
		newPages:  newPages,
		bySession: make(map[*sdkmcp.ServerSession]ListPages[F, T]),
	}
}

func (p *sessionPages[F, T]) forSession(ss *sdkmcp.ServerSession) ListPages[F, T] {
	if ss == nil {
		return p.newPages()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pages, ok := p.bySession[ss]; ok {
		return pages
	}
	pages := p.newPages()
	p.bySession[ss] = pages

	go func() {
		_ = ss.Wait()
		p.mu.Lock()
		delete(p.bySession, ss)
		p.mu.Unlock()
	}()
	return pages
}

func (p *sessionPages[F, T]) sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bySession)
}
