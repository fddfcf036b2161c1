// Package textstats derives local statistics from extracted text. Every
// function here is pure: identical inputs always give identical outputs.
package textstats

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentiment is the coarse polarity bucket of a compound score.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// SentimentThreshold is the magnitude a compound score must exceed to leave
// the neutral bucket. Exactly ±0.05 stays neutral.
const SentimentThreshold = 0.05

// TopWords is the length limit of a word-frequency table.
const TopWords = 20

// minWordLen is the shortest token kept in the word-frequency table.
const minWordLen = 3

// Stats summarizes one piece of extracted text.
type Stats struct {
	Chars     int       `json:"chars" yaml:"chars"`
	Words     int       `json:"words" yaml:"words"`
	Hashtags  int       `json:"hashtags" yaml:"hashtags"`
	Questions int       `json:"questions" yaml:"questions"`
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
}

// Empty returns the stats of a session with no analysed text.
func Empty() Stats {
	return Stats{Sentiment: Neutral}
}

// WordCount is one row of a word-frequency table.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Bucket maps a compound sentiment score to its bucket.
func Bucket(compound float64) Sentiment {
	switch {
	case compound > SentimentThreshold:
		return Positive
	case compound < -SentimentThreshold:
		return Negative
	default:
		return Neutral
	}
}

// DeriveStats computes the statistics of text. Hashtags and questions count
// '#' and '?' characters, not tokens.
func DeriveStats(text string, compound float64) Stats {
	return Stats{
		Chars:     utf8.RuneCountInString(text),
		Words:     len(strings.Fields(strings.TrimSpace(text))),
		Hashtags:  strings.Count(text, "#"),
		Questions: strings.Count(text, "?"),
		Sentiment: Bucket(compound),
	}
}

// DeriveWordFrequency returns the most frequent normalized words of text,
// highest count first. Ties keep first-seen order.
func DeriveWordFrequency(text string) []WordCount {
	tokens := strings.Fields(normalize(text))

	index := make(map[string]int)
	var table []WordCount
	for _, tok := range tokens {
		if len(tok) < minWordLen {
			continue
		}
		if i, ok := index[tok]; ok {
			table[i].Count++
			continue
		}
		index[tok] = len(table)
		table = append(table, WordCount{Word: tok, Count: 1})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})

	if len(table) > TopWords {
		table = table[:TopWords]
	}
	if table == nil {
		return []WordCount{}
	}
	return table
}

// normalize lower-cases text and drops every character outside
// [a-z0-9#? ]. Any other whitespace, Unicode spaces included, becomes a
// space so it still separates words.
func normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '#', r == '?':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}
