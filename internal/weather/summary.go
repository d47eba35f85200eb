// internal/weather/summary.go
package weather

import (
	"sort"
	"strings"
)

const (
	hourlySteps = 8 // 3-hour steps, roughly the next 24h
	dailyDays   = 5
	defaultIcon = "01d"
)

// ForecastItem is one 3-hour step of the upstream forecast.
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	DtTxt string `json:"dt_txt"`
}

// Condition is an upstream weather condition code.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Forecast is the upstream multi-step forecast.
type Forecast struct {
	List []ForecastItem `json:"list"`
}

// Hour is one entry of the hourly slice.
type Hour struct {
	Dt   int64   `json:"dt"`
	Temp float64 `json:"temp"`
	Icon string  `json:"icon"`
	Main string  `json:"main"`
	Desc string  `json:"desc"`
}

// Day is the min/max summary of one calendar date.
type Day struct {
	Date string  `json:"date"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Icon string  `json:"icon"`
}

func (it ForecastItem) condition() Condition {
	c := Condition{Icon: defaultIcon}
	if len(it.Weather) > 0 {
		c = it.Weather[0]
		if c.Icon == "" {
			c.Icon = defaultIcon
		}
	}
	return c
}

// Summarize reduces a forecast to the next hourly steps and up to five daily summaries.
func Summarize(f Forecast) ([]Hour, []Day) {
	hourly := make([]Hour, 0, hourlySteps)
	for _, it := range f.List[:min(len(f.List), hourlySteps)] {
		c := it.condition()
		hourly = append(hourly, Hour{
			Dt:   it.Dt,
			Temp: it.Main.Temp,
			Icon: c.Icon,
			Main: c.Main,
			Desc: c.Description,
		})
	}

	type bucket struct {
		day    Day
		counts map[string]int
		order  []string
	}
	byDate := make(map[string]*bucket)
	for _, it := range f.List {
		date, _, _ := strings.Cut(it.DtTxt, " ")
		icon := it.condition().Icon

		b, ok := byDate[date]
		if !ok {
			b = &bucket{
				day:    Day{Date: date, Min: it.Main.TempMin, Max: it.Main.TempMax, Icon: icon},
				counts: make(map[string]int),
			}
			byDate[date] = b
		}
		b.day.Min = min(b.day.Min, it.Main.TempMin)
		b.day.Max = max(b.day.Max, it.Main.TempMax)
		if b.counts[icon] == 0 {
			b.order = append(b.order, icon)
		}
		b.counts[icon]++
	}

	daily := make([]Day, 0, len(byDate))
	for _, b := range byDate {
		// Most frequent icon; ties go to the one seen first that day.
		best := b.day.Icon
		for _, icon := range b.order {
			if b.counts[icon] > b.counts[best] {
				best = icon
			}
		}
		b.day.Icon = best
		daily = append(daily, b.day)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	if len(daily) > dailyDays {
		daily = daily[:dailyDays]
	}
	return hourly, daily
}
