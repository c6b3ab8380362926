package emotions

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CryingThreshold is the sad probability at which "Sad" becomes "Crying".
const CryingThreshold = 0.65

// Unknown is returned for a blank emotion name.
const Unknown = "Unknown"

// percentEpsilon absorbs float error from percent-scaled scores, so a
// reported 29% (0.29 after scaling) still truncates to 29.
const percentEpsilon = 1e-9

var labels = map[string]string{
	Happy:    "Happy",
	Angry:    "Angry",
	Neutral:  "Feeling/Neutral",
	Surprise: "Surprised",
	Fear:     "Fearful",
	Disgust:  "Disgust",
}

// MapLabel maps a classifier emotion name to its display label.
// Matching is case-insensitive. Unknown names are returned with the first
// letter upper-cased and the rest untouched.
func MapLabel(dominant string, probability float64) string {
	if strings.TrimSpace(dominant) == "" {
		return Unknown
	}

	em := strings.ToLower(dominant)
	if em == Sad {
		if probability >= CryingThreshold {
			return "Crying"
		}
		return "Sad"
	}
	if label, ok := labels[em]; ok {
		return label
	}
	return capitalize(dominant)
}

// capitalize upper-cases the first rune only.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Percent scales a probability to 0-100, truncating toward zero.
func Percent(probability float64) int {
	return int(probability*100 + percentEpsilon)
}

// Compose builds the overlay text, e.g. "Angry (87%)".
func Compose(dominant string, probability float64) string {
	return fmt.Sprintf("%s (%d%%)", MapLabel(dominant, probability), Percent(probability))
}
