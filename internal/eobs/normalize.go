package eobs

import (
	"regexp"
	"strconv"
	"strings"
)

// Normalized is the heuristic extraction result: a best-effort field set
// pulled from raw text by label matching. Each field is independently
// nullable; a false match on one never blocks the others.
type Normalized struct {
	Member      *string
	Plan        *string
	Provider    *string
	GroupNumber *string
	MemberID    *string
	AmountOwed  *float64
	ServiceDate *string
	RawText     string
}

var (
	memberPattern   = regexp.MustCompile(`(?i)Member[:\s]+([A-Z][A-Za-z\s]+)`)
	planPattern     = regexp.MustCompile(`(?i)Plan[:\s]+([A-Za-z0-9\s]+)`)
	providerPattern = regexp.MustCompile(`(?i)Provider[:\s]+([A-Za-z0-9\s]+)`)
	groupPattern    = regexp.MustCompile(`(?i)Group\s*(?:Number|#)[:\s]+([A-Za-z0-9-]+)`)
	memberIDPattern = regexp.MustCompile(`(?i)Member\s+ID[:\s]+([A-Za-z0-9-]+)`)
	amountPattern   = regexp.MustCompile(`(?i)(?:You Owe|Amount Due|Patient Responsibility)[:\s$]*([\d.,]+)`)
	datePattern     = regexp.MustCompile(`(?i)Service Date[:\s]+([0-9/.\-]+)`)
)

// NormalizeText runs the label-based heuristic over raw text. It is always
// run first; the AI extractor's non-null fields override it afterwards.
func NormalizeText(text string) Normalized {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	joined := strings.Join(lines, " ")

	return Normalized{
		Member:      matchString(memberPattern, joined),
		Plan:        matchString(planPattern, joined),
		Provider:    matchString(providerPattern, joined),
		GroupNumber: matchString(groupPattern, joined),
		MemberID:    matchString(memberIDPattern, joined),
		AmountOwed:  matchAmount(joined),
		ServiceDate: matchString(datePattern, joined),
		RawText:     text,
	}
}

func matchString(pattern *regexp.Regexp, joined string) *string {
	m := pattern.FindStringSubmatch(joined)
	if m == nil {
		return nil
	}
	val := strings.TrimSpace(m[1])
	if val == "" {
		return nil
	}
	return &val
}

func matchAmount(joined string) *float64 {
	m := amountPattern.FindStringSubmatch(joined)
	if m == nil {
		return nil
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &val
}
