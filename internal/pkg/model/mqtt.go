package model

import (
	"strings"

	"github.com/gosimple/slug"
)

const (
	Domain       = "okte"
	Manufacturer = "OKTE"
	DeviceModel  = "Day-Ahead Market"
)

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is a Home Assistant MQTT discovery payload for one sensor.
type RegisterMessage struct {
	Tilda               string         `json:"~"`
	Name                string         `json:"name"`
	ID                  string         `json:"unique_id"`
	StateTopic          string         `json:"state_topic"`
	ValueTemplate       string         `json:"value_template"`
	JSONAttributesTopic string         `json:"json_attributes_topic,omitempty"`
	AvailabilityTopic   string         `json:"availability_topic"`
	UnitOfMeasurement   string         `json:"unit_of_measurement,omitempty"`
	StateClass          string         `json:"state_class,omitempty"`
	EntityCategory      string         `json:"entity_category,omitempty"`
	Icon                string         `json:"icon,omitempty"`
	Device              RegisterDevice `json:"device"`
}

type Device struct {
	ID   string
	Name string
}

// NewDevice derives the device identifier from the display name. Identifiers
// always carry the okte prefix, so "Home" becomes "okte_home" and "OKTE DAM"
// becomes "okte_dam".
func NewDevice(name string) *Device {
	id := strings.ReplaceAll(slug.Make(name), "-", "_")
	switch {
	case id == "" || id == Domain:
		id = Domain
	case !strings.HasPrefix(id, Domain+"_"):
		id = Domain + "_" + id
	}
	return &Device{ID: id, Name: name}
}

// UniqueID is the entity id of the given sensor on this device.
func (d *Device) UniqueID(key string) string {
	return d.ID + "_" + key
}
