package publisher

import (
	"context"
	"encoding/json"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

type broadcaster interface {
	Broadcast(msg []byte)
}

type socketPublisher struct {
	hub broadcaster
}

// NewSocketPublisher streams every update to websocket clients as JSON.
func NewSocketPublisher(hub broadcaster) *socketPublisher {
	return &socketPublisher{hub: hub}
}

func (s *socketPublisher) Write(_ context.Context, update model.Update) error {
	data, err := json.Marshal(struct {
		Snapshot *model.Snapshot `json:"snapshot"`
		Status   model.Status    `json:"status"`
	}{update.Snapshot, update.Status})
	if err != nil {
		return err
	}
	s.hub.Broadcast(data)
	return nil
}

func (s *socketPublisher) RegisterDevice(context.Context, *model.Device) error {
	return nil
}
