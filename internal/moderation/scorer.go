// Package moderation scores comments for spam, applies ordered moderation
// rules and assembles comment threads.
package moderation

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var linkPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)

// Config holds the weights and thresholds of the spam heuristic.
type Config struct {
	SpamThreshold    float64
	PendingThreshold float64

	Keywords      []string
	KeywordWeight float64

	MaxLinks   int
	LinkWeight float64

	CapsRatio      float64
	CapsMinLetters int
	CapsWeight     float64

	MinLength    int
	MaxLength    int
	LengthWeight float64
}

func DefaultConfig() Config {
	return Config{
		SpamThreshold:    0.7,
		PendingThreshold: 0.5,
		Keywords: []string{
			"viagra", "casino", "lottery", "crypto giveaway", "payday loan", "click here", "buy now", "free money",
		},
		KeywordWeight:  0.3,
		MaxLinks:       2,
		LinkWeight:     0.3,
		CapsRatio:      0.5,
		CapsMinLetters: 10,
		CapsWeight:     0.2,
		MinLength:      10,
		MaxLength:      5000,
		LengthWeight:   0.1,
	}
}

// Signals are the raw measurements taken from a comment body.
type Signals struct {
	Keywords  []string
	LinkCount int
	Letters   int
	CapsRatio float64
	Length    int
}

type Scorer struct {
	cfg      Config
	keywords []string
}

func NewScorer(cfg Config) *Scorer {
	keywords := make([]string, 0, len(cfg.Keywords))
	seen := make(map[string]bool, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return &Scorer{cfg: cfg, keywords: keywords}
}

// Analyze measures content without scoring it.
func (s *Scorer) Analyze(content string) Signals {
	lower := strings.ToLower(content)

	var sig Signals
	for _, k := range s.keywords {
		if strings.Contains(lower, k) {
			sig.Keywords = append(sig.Keywords, k)
		}
	}

	sig.LinkCount = countLinks(content)
	sig.Letters, sig.CapsRatio = capsRatio(content)
	sig.Length = utf8.RuneCountInString(strings.TrimSpace(content))
	return sig
}

// ScoreSignals turns signals into a score in [0,1] along with the names of
// the signals that fired.
func (s *Scorer) ScoreSignals(sig Signals) (float64, []string) {
	var score float64
	var reasons []string

	for _, k := range sig.Keywords {
		score += s.cfg.KeywordWeight
		reasons = append(reasons, "blacklisted keyword: "+k)
	}
	if sig.LinkCount > s.cfg.MaxLinks {
		score += s.cfg.LinkWeight
		reasons = append(reasons, "too many links")
	}
	if sig.Letters >= s.cfg.CapsMinLetters && sig.CapsRatio > s.cfg.CapsRatio {
		score += s.cfg.CapsWeight
		reasons = append(reasons, "excessive capitals")
	}
	if sig.Length < s.cfg.MinLength || sig.Length > s.cfg.MaxLength {
		score += s.cfg.LengthWeight
		reasons = append(reasons, "unusual length")
	}

	return math.Min(score, 1.0), reasons
}

// Score analyzes and scores content in one step.
func (s *Scorer) Score(content string) (float64, []string) {
	return s.ScoreSignals(s.Analyze(content))
}

func countLinks(content string) int {
	return len(linkPattern.FindAllStringIndex(content, -1))
}

// capsRatio returns the number of letters and the share of them that are upper case.
func capsRatio(content string) (int, float64) {
	var letters, upper int
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0, 0
	}
	return letters, float64(upper) / float64(letters)
}
