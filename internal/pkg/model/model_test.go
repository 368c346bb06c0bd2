package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice(t *testing.T) {
	tests := map[string]string{
		"OKTE DAM":        "okte_dam",
		"Home":            "okte_home",
		"Bratislava Home": "okte_bratislava_home",
		"Oktet":           "okte_oktet",
		"okte":            "okte",
		"":                "okte",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDevice(name)
			assert.Equal(t, want, d.ID)
			assert.Equal(t, name, d.Name)
		})
	}
	assert.Equal(t, "okte_dam_next_price", NewDevice("OKTE DAM").UniqueID("next_price"))
}

func TestSensorsFor(t *testing.T) {
	keys := func(s []SensorDescription) []string {
		return lo.Map(s, func(d SensorDescription, _ int) string { return d.Key })
	}

	assert.Equal(t, []string{
		"prices", "current_period", "next_price",
		"today_min", "today_max", "today_avg",
		"tomorrow_min", "tomorrow_max", "tomorrow_avg",
		UpdateStatusKey,
	}, keys(SensorsFor(RangeTodayTomorrow)))

	assert.Equal(t, []string{
		"prices", "current_period", "next_price",
		"min", "max", "avg",
		UpdateStatusKey,
	}, keys(SensorsFor(RangeToday)))
}

func TestSensorValues(t *testing.T) {
	period := 48
	update := Update{
		Snapshot: &Snapshot{
			CurrentPrice:  decimal.NewNullDecimal(decimal.RequireFromString("101.5")),
			CurrentPeriod: &period,
			Tomorrow: Stats{
				Max: decimal.NewNullDecimal(decimal.RequireFromString("90")),
			},
		},
		Status: Status{LastUpdateSuccess: true},
	}
	byKey := lo.KeyBy(SensorsFor(RangeTodayTomorrow), func(d SensorDescription) string { return d.Key })

	assert.Equal(t, json.Number("101.5"), byKey["prices"].Value(update))
	assert.Equal(t, 48, byKey["current_period"].Value(update))
	assert.Nil(t, byKey["next_price"].Value(update))
	assert.Equal(t, json.Number("90"), byKey["tomorrow_max"].Value(update))
	assert.Nil(t, byKey["today_min"].Value(update))
	assert.Equal(t, "ok", byKey[UpdateStatusKey].Value(update))
	assert.Equal(t, map[string]any{"prices": []ScheduleEntry{}}, byKey["prices"].Attributes(update))

	assert.Nil(t, byKey["prices"].Value(Update{}))
	assert.Nil(t, byKey["current_period"].Value(Update{}))
}

func TestUpdateStatusAttributes(t *testing.T) {
	last := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sensor := updateStatusSensor

	failed := Update{Status: Status{Error: "HTTP 500", LastSuccess: last}}
	assert.Equal(t, "failed", sensor.Value(failed))
	assert.Equal(t, map[string]any{
		"error":        "HTTP 500",
		"last_success": "2024-01-01T12:00:00Z",
	}, sensor.Attributes(failed))

	assert.Equal(t, map[string]any{"error": ""}, sensor.Attributes(Update{}))
}

func TestRange_UnmarshalText(t *testing.T) {
	var r Range
	require.NoError(t, r.UnmarshalText([]byte(" Today ")))
	assert.Equal(t, RangeToday, r)

	require.NoError(t, r.UnmarshalText(nil))
	assert.Equal(t, RangeTodayTomorrow, r)

	assert.Error(t, r.UnmarshalText([]byte("week")))
}

func TestScheduleEntry_MarshalJSON(t *testing.T) {
	e := ScheduleEntry{
		Period: 3,
		Start:  time.Date(2024, 1, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600)),
		Price:  decimal.RequireFromString("12.50"),
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"period":3,"start":"2023-12-31T23:30:00Z","price":12.5}`, string(b))
}
