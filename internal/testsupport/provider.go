package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Provider is a scripted generator.Provider. By default it answers
// "<name>:<system prompt>" so tests can tell which variant produced a reply.
type Provider struct {
	ProviderName string

	mu        sync.Mutex
	calls     []Call
	failOn    map[string]error
	replies   map[string]string
	delay     time.Duration
	jsonReply string
	jsonErr   error
}

// Call records one Complete invocation.
type Call struct {
	SystemPrompt string
	UserPrompt   string
}

// NewProvider returns a fake provider registered under name.
func NewProvider(name string) *Provider {
	return &Provider{ProviderName: name, failOn: map[string]error{}, replies: map[string]string{}}
}

func (p *Provider) Name() string { return p.ProviderName }

// FailWhen makes Complete return err whenever the system prompt equals prompt.
func (p *Provider) FailWhen(prompt string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		err = errors.New("scripted provider failure")
	}
	p.failOn[prompt] = err
	return p
}

// Reply makes Complete return text for the given system prompt.
func (p *Provider) Reply(prompt, text string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[prompt] = text
	return p
}

// Delay makes every call wait d (or until ctx ends).
func (p *Provider) Delay(d time.Duration) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
	return p
}

// JSON scripts the CompleteJSON answer.
func (p *Provider) JSON(reply string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jsonReply = reply
	p.jsonErr = err
	return p
}

func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	delay := p.delay
	failure := p.failOn[systemPrompt]
	reply, scripted := p.replies[systemPrompt]
	p.mu.Unlock()

	if err := wait(ctx, delay); err != nil {
		return "", err
	}
	if failure != nil {
		return "", failure
	}
	if scripted {
		return reply, nil
	}
	return fmt.Sprintf("%s:%s", p.ProviderName, systemPrompt), nil
}

func (p *Provider) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{SystemPrompt: systemPrompt, UserPrompt: userPrompt})
	delay, reply, err := p.delay, p.jsonReply, p.jsonErr
	p.mu.Unlock()
	if werr := wait(ctx, delay); werr != nil {
		return "", werr
	}
	return reply, err
}

// Calls returns a copy of the recorded calls.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
