package scraper

import (
	"regexp"
	"strings"
)

// BotDetector recognises captcha and robot-check pages served instead of content
type BotDetector struct {
	captchaPatterns []*regexp.Regexp
	botPatterns     []*regexp.Regexp
}

// NewBotDetector creates a new bot detector
func NewBotDetector() *BotDetector {
	return &BotDetector{
		captchaPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)/errors/validatecaptcha`),
			regexp.MustCompile(`(?i)enter the characters you see below`),
			regexp.MustCompile(`(?i)type the characters you see in this image`),
			regexp.MustCompile(`(?i)g-recaptcha|hcaptcha|cf-turnstile`),
			regexp.MustCompile(`(?i)verify you are (a )?human`),
		},
		botPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)make sure you'?re not a robot`),
			regexp.MustCompile(`(?i)api-services-support@amazon\.com`),
			regexp.MustCompile(`(?i)automated access to amazon data`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)unusual traffic`),
			regexp.MustCompile(`(?i)too many requests`),
		},
	}
}

// DetectBotWall reports whether page looks like a robot check and why
func (bd *BotDetector) DetectBotWall(page string) (bool, string) {
	score := 0.0
	var reasons []string

	for _, pattern := range bd.captchaPatterns {
		if pattern.MatchString(page) {
			score += 0.5
			reasons = append(reasons, "captcha: "+pattern.String())
		}
	}
	for _, pattern := range bd.botPatterns {
		if pattern.MatchString(page) {
			score += 0.3
			reasons = append(reasons, pattern.String())
		}
	}

	// real product and search pages are large; walls are tiny
	if len(page) < 5000 && score > 0 {
		score += 0.2
	}

	return score > 0.4, strings.Join(reasons, "; ")
}
