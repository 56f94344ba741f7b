package commentary

import (
	"regexp"
	"strings"
)

// DefaultEmotion is used when the model omits or mangles the tag.
const DefaultEmotion = "neutral"

// The model is instructed to lead its response with a bracketed emotion
// tag. Free-text protocols are fragile, so this is a best-effort parse
// with a neutral fallback rather than a strict grammar.
var (
	emotionLeadRE  = regexp.MustCompile(`^\[EMOTION:(\w+)\]`)
	emotionStripRE = regexp.MustCompile(`\[EMOTION:\w+\]\s*`)
)

// speedMap converts an emotion tag to the synthesis speech-rate
// multiplier.
var speedMap = map[string]float64{
	"excited":      1.2,
	"tense":        1.1,
	"thoughtful":   0.9,
	"celebratory":  1.15,
	"disappointed": 0.85,
	"urgent":       1.2,
}

// ParseEmotion extracts the leading emotion tag and returns the cleaned
// display text. Missing or malformed tags yield DefaultEmotion with the
// turn kept intact.
func ParseEmotion(text string) (emotion, cleaned string) {
	emotion = DefaultEmotion
	if m := emotionLeadRE.FindStringSubmatch(text); m != nil {
		emotion = m[1]
	}
	cleaned = strings.TrimSpace(emotionStripRE.ReplaceAllString(text, ""))
	return emotion, cleaned
}

// SpeedFor maps an emotion to a speech-rate multiplier. Unknown emotions
// speak at normal speed.
func SpeedFor(emotion string) float64 {
	if speed, ok := speedMap[emotion]; ok {
		return speed
	}
	return 1.0
}
