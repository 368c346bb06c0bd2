package prices

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

var ErrMalformedRecord = errors.New("malformed price record")

var (
	minPeriod = decimal.NewFromInt(math.MinInt32)
	maxPeriod = decimal.NewFromInt(math.MaxInt32)
)

// ParseRecord decodes a single DAM result. price and period are required,
// deliveryStart and deliveryEnd may be absent but must be valid ISO-8601
// timestamps with a zone when present.
func ParseRecord(raw model.RawRecord) (model.PriceRecord, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return model.PriceRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	price, err := decimalField(fields, "price")
	if err != nil {
		return model.PriceRecord{}, err
	}
	period, err := intField(fields, "period")
	if err != nil {
		return model.PriceRecord{}, err
	}
	start, err := timeField(fields, "deliveryStart")
	if err != nil {
		return model.PriceRecord{}, err
	}
	end, err := timeField(fields, "deliveryEnd")
	if err != nil {
		return model.PriceRecord{}, err
	}
	day, _ := fields["deliveryDay"].(string)

	return model.PriceRecord{
		DeliveryDay:   day,
		DeliveryStart: start,
		DeliveryEnd:   end,
		Period:        period,
		Price:         price,
	}, nil
}

func decimalField(fields map[string]any, key string) (decimal.Decimal, error) {
	var s string
	switch v := fields[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	case nil:
		return decimal.Decimal{}, fmt.Errorf("%w: missing %s", ErrMalformedRecord, key)
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, key, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRecord, key, s)
	}
	return d, nil
}

func intField(fields map[string]any, key string) (int, error) {
	var s string
	switch v := fields[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	case nil:
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedRecord, key)
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, key, v)
	}
	// 4.0 is a valid period, 4.5 and 1e19 are not.
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedRecord, key, s)
	}
	if d.LessThan(minPeriod) || d.GreaterThan(maxPeriod) {
		return 0, fmt.Errorf("%w: %s %q is out of range", ErrMalformedRecord, key, s)
	}
	return int(d.IntPart()), nil
}

func timeField(fields map[string]any, key string) (time.Time, error) {
	switch v := fields[key].(type) {
	case nil:
		return time.Time{}, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s %q: %v", ErrMalformedRecord, key, v, err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s has type %T", ErrMalformedRecord, key, v)
	}
}
