package prices

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

const (
	dateLayout = "2006-01-02"

	// NextPriceLookahead is how far ahead of now the next price is taken.
	NextPriceLookahead = 15 * time.Minute

	avgPlaces = 4
)

// Aggregate derives a snapshot from the raw DAM results as seen at now.
// Malformed records are skipped. If several intervals contain now, the last
// one in input order wins.
func Aggregate(raw []model.RawRecord, now time.Time) model.Snapshot {
	logger := zap.L()
	now = now.UTC()
	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)
	lookahead := now.Add(NextPriceLookahead)

	var todayPrices, tomorrowPrices []decimal.Decimal
	schedule := make([]model.ScheduleEntry, 0, len(raw))
	snap := model.Snapshot{EvaluatedAt: now}

	for i, r := range raw {
		rec, err := ParseRecord(r)
		if err != nil {
			logger.Debug("skipping malformed entry", zap.Int("index", i), zap.ByteString("entry", r), zap.Error(err))
			continue
		}

		switch rec.DeliveryDay {
		case today:
			todayPrices = append(todayPrices, rec.Price)
		case tomorrow:
			tomorrowPrices = append(tomorrowPrices, rec.Price)
		}

		if !rec.HasInterval() {
			continue
		}
		if rec.DeliveryEnd.After(now) {
			schedule = append(schedule, model.ScheduleEntry{
				Period: rec.Period,
				Start:  rec.DeliveryStart,
				Price:  rec.Price,
			})
		}
		if rec.Contains(now) {
			period := rec.Period
			snap.CurrentPrice = decimal.NewNullDecimal(rec.Price)
			snap.CurrentPeriod = &period
		}
		if rec.Contains(lookahead) {
			snap.NextPrice = decimal.NewNullDecimal(rec.Price)
		}
	}

	slices.SortStableFunc(schedule, func(a, b model.ScheduleEntry) int {
		return a.Start.Compare(b.Start)
	})
	snap.Prices = schedule
	snap.Today = Summarize(todayPrices)
	snap.Tomorrow = Summarize(tomorrowPrices)

	logger.Debug("aggregated DAM results",
		zap.Int("records", len(raw)),
		zap.Int("today", len(todayPrices)),
		zap.Int("tomorrow", len(tomorrowPrices)),
		zap.Int("schedule", len(schedule)))

	return snap
}

func Summarize(prices []decimal.Decimal) model.Stats {
	return model.Stats{
		Min: Min(prices),
		Max: Max(prices),
		Avg: Avg(prices),
	}
}

func Min(prices []decimal.Decimal) decimal.NullDecimal {
	if len(prices) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(lo.MinBy(prices, func(a, b decimal.Decimal) bool {
		return a.LessThan(b)
	}))
}

func Max(prices []decimal.Decimal) decimal.NullDecimal {
	if len(prices) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(lo.MaxBy(prices, func(a, b decimal.Decimal) bool {
		return a.GreaterThan(b)
	}))
}

// Avg is the arithmetic mean rounded to four decimal places.
func Avg(prices []decimal.Decimal) decimal.NullDecimal {
	if len(prices) == 0 {
		return decimal.NullDecimal{}
	}
	sum := lo.Reduce(prices, func(acc decimal.Decimal, p decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(p)
	}, decimal.Zero)
	return decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(avgPlaces))
}
