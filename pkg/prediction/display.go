package prediction

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ActionThreshold is the attrition probability from which the dashboard
// highlights a result as elevated.
const ActionThreshold = 0.35

// HighThreshold is the attrition probability from which a result is high.
const HighThreshold = 0.5

// Tone classifies a value for colouring.
type Tone string

const (
	ToneLow      Tone = "low"
	ToneElevated Tone = "elevated"
	ToneHigh     Tone = "high"
)

// RiskTone classifies a risk or action label. Labels mentioning HIGH_RISK or
// ACTION_REQUIRED are high, anything else is low.
func RiskTone(level string) Tone {
	if strings.Contains(level, "HIGH_RISK") || strings.Contains(level, "ACTION_REQUIRED") {
		return ToneHigh
	}
	return ToneLow
}

// ProbabilityTone classifies an attrition probability.
func ProbabilityTone(probability float64) Tone {
	switch {
	case probability >= HighThreshold:
		return ToneHigh
	case probability >= ActionThreshold:
		return ToneElevated
	default:
		return ToneLow
	}
}

// FormatPercent renders a 0-1 probability as a percentage with two decimals.
func FormatPercent(probability float64) string {
	return strconv.FormatFloat(probability*100, 'f', 2, 64) + "%"
}

// YesNo renders a binary prediction.
func YesNo(binary int) string {
	if binary == 1 {
		return "Yes"
	}
	return "No"
}

// FormatDecimal renders a value with two decimals.
func FormatDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// FeatureLabel renders an engineered feature name for display.
func FeatureLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// Feature is a single engineered feature prepared for display.
type Feature struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// Features returns the engineered features sorted by name.
func (p Productivity) Features() []Feature {
	if len(p.EngineeredFeatures) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.EngineeredFeatures))
	for name := range p.EngineeredFeatures {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Feature, 0, len(names))
	for _, name := range names {
		value := p.EngineeredFeatures[name]
		out = append(out, Feature{
			Name:  name,
			Label: FeatureLabel(name),
			Value: value,
			Text:  FormatDecimal(value),
		})
	}
	return out
}
