// internal/scoring/purpose.go
package scoring

import "strings"

// PurposeClassifier decides whether a stated loan purpose qualifies for the
// sustainable-purpose risk discount.
type PurposeClassifier interface {
	IsSustainable(purpose string) bool
}

// DefaultSustainableKeywords are the purpose fragments that earn the
// discount under the keyword classifier.
var DefaultSustainableKeywords = []string{
	"irrigation",
	"organic",
	"solar",
	"conservation",
	"drip",
	"sustainable",
	"renewable",
}

// KeywordClassifier matches purposes by case-insensitive substring against a
// fixed keyword list.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier builds a classifier over the given keywords, or the
// default list when none are given.
func NewKeywordClassifier(keywords ...string) *KeywordClassifier {
	if len(keywords) == 0 {
		keywords = DefaultSustainableKeywords
	}
	return &KeywordClassifier{keywords: keywords}
}

func (c *KeywordClassifier) IsSustainable(purpose string) bool {
	lowered := strings.ToLower(purpose)
	for _, keyword := range c.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
