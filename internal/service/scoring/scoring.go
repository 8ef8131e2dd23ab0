package scoring

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/octobees/leadgenius/api/internal/entity"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categorySocial   = "social_presence"
	categoryBusiness = "business_profile"
)

// IdealThreshold is the minimum total for a company to count as an ideal client.
const IdealThreshold = 60

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
}

// LeadFeatures captures the signals used for scoring.
type LeadFeatures struct {
	Emails      []string
	Phones      []string
	Socials     map[string]string
	Address     string
	Website     string
	Industry    string
	Size        string
	Description string
	Contacts    int
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Breakdown map[string]int
}

// Fit is the locally computed ideal-client judgement.
type Fit struct {
	IsIdeal   bool
	Score     int
	Reasoning string
	Breakdown map[string]int
}

// FeaturesFromCompany derives scoring features from a stored company.
func FeaturesFromCompany(c entity.Company, contacts int) LeadFeatures {
	address := strings.Join(nonEmpty(entity.Value(c.Street), entity.Value(c.City), entity.Value(c.State), entity.Value(c.Zip), entity.Value(c.Country)), ", ")
	if address == "" {
		address = entity.Value(c.Location)
	}
	return LeadFeatures{
		Emails: nonEmpty(entity.Value(c.Email)),
		Phones: nonEmpty(entity.Value(c.Phone)),
		Socials: map[string]string{
			"linkedin":  entity.Value(c.LinkedInURL),
			"facebook":  entity.Value(c.FacebookURL),
			"twitter":   entity.Value(c.TwitterURL),
			"instagram": entity.Value(c.InstagramURL),
		},
		Address:     address,
		Website:     entity.Value(c.Website),
		Industry:    entity.Value(c.Industry),
		Size:        entity.Value(c.Size),
		Description: entity.Value(c.Description),
		Contacts:    contacts,
	}
}

// ComputeFit scores a company and explains the result in one paragraph.
func ComputeFit(c entity.Company, contacts int) Fit {
	score := ComputeScore(FeaturesFromCompany(c, contacts))
	fit := Fit{
		IsIdeal:   score.Total >= IdealThreshold,
		Score:     score.Total,
		Breakdown: score.Breakdown,
	}

	categories := make([]string, 0, len(score.Breakdown))
	for k := range score.Breakdown {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	parts := make([]string, 0, len(categories))
	for _, k := range categories {
		parts = append(parts, fmt.Sprintf("%s %d", strings.ReplaceAll(k, "_", " "), score.Breakdown[k]))
	}

	verdict := "is not yet an ideal client"
	if fit.IsIdeal {
		verdict = "looks like an ideal client"
	}
	fit.Reasoning = fmt.Sprintf("%s %s with a fit score of %d/100 (%s).", c.Name, verdict, score.Total, strings.Join(parts, ", "))
	return fit
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact:  scoreContactCompleteness(input),
		categoryWebsite:  scoreWebsiteQuality(input),
		categorySocial:   scoreSocialPresence(input),
		categoryBusiness: scoreBusinessProfile(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreContactCompleteness(input LeadFeatures) int {
	score := 0
	if hasValue(input.Emails) {
		score += 10
	}
	if hasValue(input.Phones) {
		score += 10
	}
	score += min(input.Contacts*5, 10)
	if score > 30 {
		return 30
	}
	return score
}

func scoreWebsiteQuality(input LeadFeatures) int {
	if strings.TrimSpace(input.Website) == "" {
		return 0
	}
	score := 10
	if hasHTTPS(input.Website) {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 10
	}
	return score
}

func scoreSocialPresence(input LeadFeatures) int {
	if len(input.Socials) == 0 {
		return 0
	}

	score := 0
	normalized := normalizeSocialKeys(input.Socials)
	if normalized["linkedin"] != "" {
		score += 8
	}
	if normalized["facebook"] != "" {
		score += 4
	}
	if normalized["instagram"] != "" {
		score += 4
	}
	if normalized["twitter"] != "" {
		score += 4
	}
	if score > 20 {
		return 20
	}
	return score
}

func scoreBusinessProfile(input LeadFeatures) int {
	score := 0
	if hasCompleteAddress(input.Address) {
		score += 5
	}
	if strings.TrimSpace(input.Industry) != "" {
		score += 5
	}
	if strings.TrimSpace(input.Size) != "" {
		score += 5
	}
	if len(strings.TrimSpace(input.Description)) >= 40 {
		score += 5
	}
	return score
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func normalizeSocialKeys(socials map[string]string) map[string]string {
	result := make(map[string]string, len(socials))
	for key, value := range socials {
		normalizedKey := strings.ToLower(strings.TrimSpace(key))
		if normalizedKey == "" {
			continue
		}
		result[normalizedKey] = strings.TrimSpace(value)
	}
	return result
}

func hasHTTPS(website string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(website)), "https://")
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if len(addr) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separatorCount := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',':
			separatorCount++
		}
	}
	return hasLetter && hasDigit && separatorCount >= 1
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	host := strings.TrimSpace(strings.ToLower(parsed.Host))
	return strings.TrimPrefix(host, "www.")
}
