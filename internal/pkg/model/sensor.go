package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UnitEURMWh       = "EUR/MWh"
	StateMeasurement = "measurement"
	CategoryDiag     = "diagnostic"
	UpdateStatusKey  = "update_status"
)

// SensorDescription describes one published data point.
type SensorDescription struct {
	Key            string
	Name           string
	Unit           string
	StateClass     string
	EntityCategory string
	Icon           string
	// Value returns a json.Number, a string or nil for an unknown state.
	Value func(u Update) any
	// Attributes is optional.
	Attributes func(u Update) map[string]any
}

func snapshotValue(f func(s *Snapshot) decimal.NullDecimal) func(u Update) any {
	return func(u Update) any {
		if u.Snapshot == nil {
			return nil
		}
		return Number(f(u.Snapshot))
	}
}

func priceSensor(key, name, icon string, f func(s *Snapshot) decimal.NullDecimal) SensorDescription {
	return SensorDescription{
		Key:        key,
		Name:       name,
		Unit:       UnitEURMWh,
		StateClass: StateMeasurement,
		Icon:       icon,
		Value:      snapshotValue(f),
	}
}

var (
	currentPriceSensor = SensorDescription{
		Key:        "prices",
		Name:       "Prices",
		Unit:       UnitEURMWh,
		StateClass: StateMeasurement,
		Icon:       "mdi:currency-eur",
		Value:      snapshotValue(func(s *Snapshot) decimal.NullDecimal { return s.CurrentPrice }),
		Attributes: func(u Update) map[string]any {
			if u.Snapshot == nil || u.Snapshot.Prices == nil {
				return map[string]any{"prices": []ScheduleEntry{}}
			}
			return map[string]any{"prices": u.Snapshot.Prices}
		},
	}
	currentPeriodSensor = SensorDescription{
		Key:        "current_period",
		Name:       "Current Period",
		StateClass: StateMeasurement,
		Icon:       "mdi:timer-outline",
		Value: func(u Update) any {
			if u.Snapshot == nil || u.Snapshot.CurrentPeriod == nil {
				return nil
			}
			return *u.Snapshot.CurrentPeriod
		},
	}
	nextPriceSensor = priceSensor("next_price", "Next Price", "mdi:skip-next",
		func(s *Snapshot) decimal.NullDecimal { return s.NextPrice })
	updateStatusSensor = SensorDescription{
		Key:            UpdateStatusKey,
		Name:           "Update Status",
		EntityCategory: CategoryDiag,
		Icon:           "mdi:cloud-sync",
		Value: func(u Update) any {
			if u.Status.LastUpdateSuccess {
				return "ok"
			}
			return "failed"
		},
		Attributes: func(u Update) map[string]any {
			attrs := map[string]any{"error": u.Status.Error}
			if !u.Status.LastSuccess.IsZero() {
				attrs["last_success"] = u.Status.LastSuccess.UTC().Format(time.RFC3339)
			}
			return attrs
		},
	}
)

func statsSensors(prefix, label string, f func(s *Snapshot) Stats) []SensorDescription {
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "_" + k
	}
	name := func(n string) string {
		if label == "" {
			return n + " Price"
		}
		return label + " " + n + " Price"
	}
	return []SensorDescription{
		priceSensor(key("min"), name("Min"), "mdi:arrow-down-bold",
			func(s *Snapshot) decimal.NullDecimal { return f(s).Min }),
		priceSensor(key("max"), name("Max"), "mdi:arrow-up-bold",
			func(s *Snapshot) decimal.NullDecimal { return f(s).Max }),
		priceSensor(key("avg"), name("Avg"), "mdi:approximately-equal",
			func(s *Snapshot) decimal.NullDecimal { return f(s).Avg }),
	}
}

// SensorsFor returns the sensor set published for the given range. The
// today-only range publishes unqualified min/max/avg sensors.
func SensorsFor(r Range) []SensorDescription {
	sensors := []SensorDescription{currentPriceSensor, currentPeriodSensor, nextPriceSensor}
	today := func(s *Snapshot) Stats { return s.Today }
	if r == RangeToday {
		sensors = append(sensors, statsSensors("", "", today)...)
	} else {
		sensors = append(sensors, statsSensors("today", "Today", today)...)
		sensors = append(sensors, statsSensors("tomorrow", "Tomorrow", func(s *Snapshot) Stats { return s.Tomorrow })...)
	}
	return append(sensors, updateStatusSensor)
}
