package social

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/augur/internal/analysis"
)

var positiveWords = []string{
	"clutch", "dominant", "historic", "incredible", "career-high",
	"buzzer", "mvp", "unstoppable", "breakout", "viral",
}

var negativeWords = []string{
	"injury", "injured", "out", "slump", "benched",
	"struggling", "suspended", "questionable", "doubtful",
}

var influencerMarkers = []string{
	"espn", "bleacher report", "the athletic", "shams", "wojnarowski",
}

// PlayerSignal scrapes current chatter for a player. Scrape failures
// degrade to the neutral default signal rather than failing the analysis.
func (c *Client) PlayerSignal(ctx context.Context, playerName string) *analysis.SocialSignal {
	query := fmt.Sprintf("%s nba highlights", playerName)

	doc, err := c.fetchWithRateLimit(ctx, query)
	if err != nil {
		log.Printf("[social] scrape failed for %s, using default signal: %v", playerName, err)
		signal := analysis.DefaultSocialSignal()
		return &signal
	}

	signal := parseSignal(doc, playerName)
	return &signal
}

// parseSignal derives a social signal from a result page: result blocks
// count as mentions, headline keywords set the sentiment, and major outlet
// names count as influencer coverage.
func parseSignal(doc *goquery.Document, playerName string) analysis.SocialSignal {
	nameLower := strings.ToLower(playerName)

	var (
		mentions    int
		positive    int
		negative    int
		influencers int
	)

	doc.Find("h3, a, span").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" || !strings.Contains(text, nameLower) {
			return
		}
		mentions++

		for _, word := range positiveWords {
			if strings.Contains(text, word) {
				positive++
				break
			}
		}
		for _, word := range negativeWords {
			if strings.Contains(text, word) {
				negative++
				break
			}
		}
		for _, marker := range influencerMarkers {
			if strings.Contains(text, marker) {
				influencers++
				break
			}
		}
	})

	if mentions == 0 {
		return analysis.DefaultSocialSignal()
	}

	var sentiment float64
	if scored := positive + negative; scored > 0 {
		sentiment = float64(positive-negative) / float64(scored)
	}

	return analysis.SocialSignal{
		Mentions:           mentions,
		Sentiment:          sentiment,
		ViralScore:         math.Min(100, float64(mentions)*5+float64(positive)*10),
		InfluencerMentions: influencers,
	}
}
