package publisher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	// Write publishes the latest update to the sink.
	Write(ctx context.Context, update model.Update) error
	RegisterDevice(ctx context.Context, device *model.Device) error
}

// Registry fans updates out to every registered sink. A failing sink is
// logged and skipped.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]publisher
	logger     *zap.Logger
}

func New() *Registry {
	return &Registry{
		publishers: make(map[string]publisher),
		logger:     zap.L(),
	}
}

func (r *Registry) RegisterPublisher(name string, p publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[name]; ok {
		return errAlreadyRegistered
	}
	r.publishers[name] = p
	return nil
}

func (r *Registry) Publish(ctx context.Context, update model.Update) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		if err := p.Write(ctx, update); err != nil {
			r.logger.Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("published update", zap.String("publisher", name), zap.Bool("last_update_success", update.Status.LastUpdateSuccess))
	}
	return nil
}

func (r *Registry) RegisterDevice(ctx context.Context, device *model.Device) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		if err := p.RegisterDevice(ctx, device); err != nil {
			r.logger.Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("registered device", zap.String("device", device.ID), zap.String("publisher", name))
	}
	return nil
}
