package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/octobees/leadgenius/api/internal/dto"
)

var (
	stopwordExpr    = regexp.MustCompile(`(?i)\b(find|search|show|get|give|list|me|us|some|all|the|a|an|for|please|leads?|of|cari|tolong|yang|untuk)\b`)
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|around|at|di)\s+([\p{L}][\p{L}\s,.'-]*)$`)
	limitPattern    = regexp.MustCompile(`\b(\d{1,4})\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 500
)

// PromptService interprets free-form lead search prompts.
type PromptService struct {
	DefaultLocation string
}

// PromptResult contains structured parameters derived from a prompt.
type PromptResult struct {
	Keywords string
	Location string
	Limit    int
}

// NewPromptService creates a prompt parser. The default location may be empty.
func NewPromptService(defaultLocation string) *PromptService {
	return &PromptService{DefaultLocation: strings.TrimSpace(defaultLocation)}
}

// Parse converts a prompt such as "find 25 dentists in Austin, TX" into keywords,
// location and result limit. Explicit request fields win over the prompt.
func (s *PromptService) Parse(req dto.PromptSearchRequest) (PromptResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return PromptResult{}, invalid("prompt", "prompt is required")
	}

	location := ""
	if match := locationPattern.FindStringSubmatchIndex(prompt); match != nil {
		location = strings.Trim(strings.TrimSpace(prompt[match[2]:match[3]]), ",.")
		prompt = strings.TrimSpace(prompt[:match[0]])
	}

	limit := 0
	if match := limitPattern.FindStringSubmatchIndex(prompt); match != nil {
		limit, _ = strconv.Atoi(prompt[match[2]:match[3]])
		prompt = prompt[:match[0]] + " " + prompt[match[1]:]
	}

	keywords := stopwordExpr.ReplaceAllString(prompt, " ")
	keywords = strings.Trim(spacePattern.ReplaceAllString(keywords, " "), " ,.")

	if l := strings.TrimSpace(req.Location); l != "" {
		location = l
	}
	if location == "" {
		location = s.DefaultLocation
	}
	if req.Limit > 0 {
		limit = req.Limit
	}

	if keywords == "" {
		return PromptResult{}, invalid("prompt", "prompt does not describe what to search for")
	}

	return PromptResult{
		Keywords: keywords,
		Location: titleCase(location),
		Limit:    clampLimit(limit),
	}, nil
}

// Query joins keywords and location the way the scraper expects a search string.
func (r PromptResult) Query() string {
	if r.Location == "" {
		return r.Keywords
	}
	return r.Keywords + " in " + r.Location
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	parts := strings.Fields(value)
	for i, p := range parts {
		if len(p) <= 2 && strings.ToUpper(p) == p {
			continue
		}
		lower := strings.ToLower(p)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
