package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/olist/pkg/core"
)

// Factory builds an unconnected adapter. A nil logger discards output.
type Factory func(logger *slog.Logger) Adapter

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a target type available under name, matched without
// regard to case. Adapters call it from init.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[strings.ToLower(name)] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[strings.ToLower(name)]
	return f, ok
}

// IsRegistered reports whether a target type is available.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// ListAdapters returns the registered target types in sorted order.
func ListAdapters() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewAdapter builds the adapter for cfg.Type without connecting it.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}
	f, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	return f(logger), nil
}

// Open builds and connects the adapter for cfg.Type. On a failed connect
// the adapter is closed before returning.
func Open(ctx context.Context, cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	a, err := NewAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to connect %s target: %w", cfg.Type, err)
	}
	return a, nil
}

// UnknownAdapterError names a target type nothing registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown target type %q (available: %s); check target.type in olist.yaml",
		e.Type, strings.Join(e.Available, ", "))
}
