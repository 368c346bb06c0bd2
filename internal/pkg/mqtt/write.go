package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/model"
	"github.com/anicoll/okte-integration/pkg/hasher"
)

const valueTemplate = "{{ value_json.value }}"

func (s *service) baseTopic(device *model.Device, key string) string {
	return fmt.Sprintf("%s/sensor/%s", s.prefix, device.UniqueID(key))
}

// RegisterDevice publishes a retained discovery config for every sensor of
// the device. Sensors already configured are skipped.
func (s *service) RegisterDevice(_ context.Context, device *model.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
	return s.register(device)
}

func (s *service) register(device *model.Device) error {
	for _, sensor := range s.sensors {
		uniqueID := device.UniqueID(sensor.Key)
		if _, exists := s.configured[uniqueID]; exists {
			continue
		}
		payload, err := json.Marshal(s.registerMsg(device, sensor))
		if err != nil {
			return err
		}
		if err := s.publish(s.baseTopic(device, sensor.Key)+"/config", true, payload); err != nil {
			return err
		}
		s.configured[uniqueID] = struct{}{}
		s.logger.Info("configured sensor", zap.String("device", device.ID), zap.String("sensor", sensor.Key))
	}
	return nil
}

// Write publishes the state and attributes of every sensor. Payloads equal
// to the last one sent on a topic are skipped.
func (s *service) Write(_ context.Context, update model.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &update
	return s.write(update)
}

// resync drops what the broker is assumed to hold and publishes the discovery
// configs and the last update again. A reconnected broker may have lost its
// retained messages.
func (s *service) resync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = make(map[string]struct{})
	s.lastPayloads = make(map[string]string)

	if err := s.register(s.device); err != nil {
		s.logger.Warn("failed to republish discovery configs", zap.Error(err))
		return
	}
	if s.last == nil {
		return
	}
	if err := s.write(*s.last); err != nil {
		s.logger.Warn("failed to republish sensor states", zap.Error(err))
	}
}

func (s *service) write(update model.Update) error {
	count := 0
	for _, sensor := range s.sensors {
		base := s.baseTopic(s.device, sensor.Key)

		state, err := json.Marshal(map[string]any{"value": sensor.Value(update)})
		if err != nil {
			return err
		}
		sent, err := s.publishIfChanged(base+"/state", state)
		if err != nil {
			return err
		}
		if sent {
			count++
		}

		if sensor.Attributes == nil {
			continue
		}
		attrs, err := json.Marshal(sensor.Attributes(update))
		if err != nil {
			return err
		}
		if _, err := s.publishIfChanged(base+"/attributes", attrs); err != nil {
			return err
		}
	}
	s.logger.Debug("updated sensors", zap.Int("count", count))
	return nil
}

func (s *service) publishIfChanged(topic string, payload []byte) (bool, error) {
	sum := hasher.Sum(payload)
	if old, exists := s.lastPayloads[topic]; exists && old == sum {
		return false, nil
	}
	if err := s.publish(topic, true, payload); err != nil {
		return false, err
	}
	s.lastPayloads[topic] = sum
	return true, nil
}

func (s *service) registerMsg(device *model.Device, sensor model.SensorDescription) model.RegisterMessage {
	msg := model.RegisterMessage{
		Tilda:             s.baseTopic(device, sensor.Key),
		Name:              sensor.Name,
		ID:                device.UniqueID(sensor.Key),
		StateTopic:        "~/state",
		ValueTemplate:     valueTemplate,
		AvailabilityTopic: AvailabilityTopic(s.prefix, device),
		UnitOfMeasurement: sensor.Unit,
		StateClass:        sensor.StateClass,
		EntityCategory:    sensor.EntityCategory,
		Icon:              sensor.Icon,
		Device: model.RegisterDevice{
			Name:         device.Name,
			Identifiers:  []string{device.ID},
			Model:        model.DeviceModel,
			Manufacturer: model.Manufacturer,
		},
	}
	if sensor.Attributes != nil {
		msg.JSONAttributesTopic = "~/attributes"
	}
	return msg
}
