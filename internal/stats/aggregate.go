// internal/stats/aggregate.go
package stats

import (
	"sort"

	"devboard/internal/model"
)

const (
	// DefaultWeeks is the size of the recent commit window shown per repository.
	DefaultWeeks = 12
	// DefaultMinSharePercent hides languages below this share of a repository's bytes.
	DefaultMinSharePercent = 2.0
)

// RecentWeeks projects the last n weeks of a successful commit-activity result.
// Analyzing and error results yield an empty series, never zero-filled weeks.
func RecentWeeks(result model.CommitActivity, n int) []model.WeekTotal {
	if result.Status != model.ActivitySuccess || n <= 0 {
		return []model.WeekTotal{}
	}

	weeks := result.Weeks
	if len(weeks) > n {
		weeks = weeks[len(weeks)-n:]
	}

	totals := make([]model.WeekTotal, len(weeks))
	for i, w := range weeks {
		totals[i] = model.WeekTotal{Week: w.Week, Total: w.Total}
	}
	return totals
}

// LanguageShares converts a language byte map into percentage shares, largest first.
// Languages under minPercent are dropped unless they are the only language.
// Percentages stay relative to the full total, so the result may sum to less than 100.
func LanguageShares(byteMap map[string]int, minPercent float64) []model.LanguageShare {
	total := 0
	for _, b := range byteMap {
		total += b
	}
	if total <= 0 {
		return []model.LanguageShare{}
	}

	if len(byteMap) == 1 {
		for lang, b := range byteMap {
			return []model.LanguageShare{{Lang: lang, Pct: pct(b, total)}}
		}
	}

	langs := make([]string, 0, len(byteMap))
	for lang := range byteMap {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		bi, bj := byteMap[langs[i]], byteMap[langs[j]]
		if bi != bj {
			return bi > bj
		}
		return langs[i] < langs[j]
	})

	shares := make([]model.LanguageShare, 0, len(langs))
	for _, lang := range langs {
		p := pct(byteMap[lang], total)
		if p < minPercent {
			continue
		}
		shares = append(shares, model.LanguageShare{Lang: lang, Pct: p})
	}
	return shares
}

func pct(part, total int) float64 {
	return float64(part) / float64(total) * 100
}
