package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeySource yields the bearer token for the completion API.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// Getter is satisfied by paramstore.Client.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// StaticKey is an API key read from the environment at process start.
type StaticKey string

func (k StaticKey) APIKey(context.Context) (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", errors.New("openai: API token is empty")
	}
	return key, nil
}

// tokenPayload is the JSON shape accepted for parameter store tokens.
type tokenPayload struct {
	Token string `json:"token"`
}

// ParamStoreKey resolves the API key from a parameter store on first use and
// caches it for the lifetime of the process. Failed lookups are not cached.
type ParamStoreKey struct {
	getter Getter
	name   string

	mu     sync.Mutex
	loaded bool
	key    string
}

func NewParamStoreKey(getter Getter, name string) (*ParamStoreKey, error) {
	if getter == nil {
		return nil, errors.New("openai: paramstore getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("openai: token parameter name is empty")
	}
	return &ParamStoreKey{getter: getter, name: name}, nil
}

func (p *ParamStoreKey) APIKey(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.key, nil
	}
	key, err := fetchAPIKeyFromParamStore(ctx, p.getter, p.name)
	if err != nil {
		return "", err
	}
	p.key = key
	p.loaded = true
	return key, nil
}

// fetchAPIKeyFromParamStore accepts either {"token":"..."} or the bare key.
func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("openai: fetch token from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return StaticKey(raw).APIKey(ctx)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("openai: unmarshal paramstore token value as JSON: %w", err)
	}
	return StaticKey(tp.Token).APIKey(ctx)
}
