package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/config"
	"github.com/anicoll/okte-integration/internal/pkg/model"
)

const (
	connectTimeout    = 5 * time.Second
	publishTimeout    = 10 * time.Second
	disconnectQuiesce = 250

	payloadOnline  = "online"
	payloadOffline = "offline"
)

var ErrTimeout = errors.New("mqtt operation timed out")

type service struct {
	client       paho_mqtt.Client
	logger       *zap.Logger
	prefix       string
	device       *model.Device
	sensors      []model.SensorDescription
	mu           sync.Mutex
	configured   map[string]struct{}
	lastPayloads map[string]string // topic to payload digest
	last         *model.Update
}

// New returns a Home Assistant discovery publisher for device.
func New(client paho_mqtt.Client, prefix string, device *model.Device, sensors []model.SensorDescription) *service {
	return &service{
		client:       client,
		logger:       zap.L(),
		prefix:       prefix,
		device:       device,
		sensors:      sensors,
		configured:   make(map[string]struct{}),
		lastPayloads: make(map[string]string),
	}
}

// Dial builds the paho client and the service around it. Every connect,
// including automatic reconnects, republishes the device and its last state.
func Dial(cfg config.MqttConfig, device *model.Device, sensors []model.SensorDescription) *service {
	s := New(nil, cfg.DiscoveryPrefix, device, sensors)
	s.client = NewClient(cfg, device, func() {
		go s.resync()
	})
	return s
}

// NewClient builds a paho client whose will marks the device offline.
// onConnect may be nil.
func NewClient(cfg config.MqttConfig, device *model.Device, onConnect func()) paho_mqtt.Client {
	logger := zap.L()
	availability := AvailabilityTopic(cfg.DiscoveryPrefix, device)

	opts := paho_mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg.Host))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(availability, payloadOffline, 1, true)
	opts.OnConnect = func(client paho_mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", cfg.Host))
		// Availability has to be restored after every reconnect, the broker
		// already fired the will.
		client.Publish(availability, 1, true, payloadOnline)
		if onConnect != nil {
			onConnect()
		}
	}
	opts.OnConnectionLost = func(_ paho_mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	}
	return paho_mqtt.NewClient(opts)
}

func brokerURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	if !strings.Contains(host, ":") {
		host += ":1883"
	}
	return "tcp://" + host
}

// AvailabilityTopic is shared by all sensors of the device.
func AvailabilityTopic(prefix string, device *model.Device) string {
	return fmt.Sprintf("%s/sensor/%s/availability", prefix, device.ID)
}

func (s *service) Connect() error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("%w: unable to connect in time", ErrTimeout)
	}
	return token.Error()
}

// Close marks the device offline and disconnects.
func (s *service) Close() error {
	err := s.publish(AvailabilityTopic(s.prefix, s.device), true, []byte(payloadOffline))
	s.client.Disconnect(disconnectQuiesce)
	return err
}

func (s *service) publish(topic string, retained bool, payload []byte) error {
	token := s.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: publish to %s", ErrTimeout, topic)
	}
	return token.Error()
}
