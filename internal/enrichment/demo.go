package enrichment

import (
	"fmt"
	"strings"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// Sample content shown when neither a webhook nor OpenAI produced an answer.
// It is built only from fields already stored on the records.

func demoCompanyResearch(c *entity.Company) string {
	industry := orDefault(entity.Value(c.Industry), "its industry")
	place := companyPlace(c)
	var b strings.Builder
	fmt.Fprintf(&b, "%s operates in %s", c.Name, industry)
	if place != "" {
		fmt.Fprintf(&b, " and is based in %s", place)
	}
	b.WriteString(".")
	if d := entity.Value(c.Description); d != "" {
		fmt.Fprintf(&b, " %s", d)
	}
	if w := entity.Value(c.Website); w != "" {
		fmt.Fprintf(&b, " Their website is %s.", w)
	}
	b.WriteString(" Configure the company research webhook for a full research brief.")
	return b.String()
}

func demoProfileResearch(ct *entity.Contact, c *entity.Company) string {
	role := orDefault(entity.Value(ct.Title), "a team member")
	company := "their company"
	if c != nil {
		company = c.Name
	}
	return fmt.Sprintf("%s is %s at %s. Open with a question about their current priorities at %s "+
		"and keep the first message short. Configure the profile research webhook for a detailed profile.",
		orDefault(ct.Name(), "This contact"), role, company, company)
}

func demoInsight(kind entity.InsightKind, c *entity.Company) string {
	industry := orDefault(entity.Value(c.Industry), "their market")
	switch kind {
	case entity.InsightAwards:
		return fmt.Sprintf("No award data is available for %s yet. Check industry associations in %s and local business awards.", c.Name, industry)
	case entity.InsightJobPostings:
		return fmt.Sprintf("No job postings were found for %s. Hiring activity often signals budget for new tools in %s.", c.Name, industry)
	case entity.InsightContentAudit:
		if entity.Value(c.Website) == "" {
			return fmt.Sprintf("%s has no website on file. A basic site with clear contact details is the first improvement to suggest.", c.Name)
		}
		return fmt.Sprintf("%s has a website at %s. Review it for a clear call to action, recent content and mobile performance.", c.Name, entity.Value(c.Website))
	case entity.InsightAdStatus:
		return fmt.Sprintf("Ad activity for %s is unknown. Look for sponsored listings and social ads before the first call.", c.Name)
	case entity.InsightSuggestedApproach:
		return fmt.Sprintf("Lead with a short, specific observation about %s and a concrete outcome other %s businesses achieved. Follow up by phone within two days.", c.Name, industry)
	case entity.InsightTechStack:
		return fmt.Sprintf("The technology stack of %s has not been analysed yet.", c.Name)
	default:
		return fmt.Sprintf("No %s insight is available for %s yet.", humanize(string(kind)), c.Name)
	}
}

func demoScripts(c *entity.Company, ct *entity.Contact) entity.OutreachScripts {
	greeting := "Hi there"
	if ct != nil && ct.FirstName != "" {
		greeting = "Hi " + ct.FirstName
	}
	industry := orDefault(entity.Value(c.Industry), "your industry")

	return entity.OutreachScripts{
		Call: fmt.Sprintf("%s, this is [Your Name]. I work with %s businesses like %s and noticed a few quick wins for you. "+
			"Do you have two minutes to hear them?", greeting, industry, c.Name),
		Email: fmt.Sprintf("Subject: A quick idea for %s\n\n%s,\n\nI have been looking at %s and found a couple of ways "+
			"to bring in more customers. Would you be open to a 15 minute call this week?\n\nBest,\n[Your Name]", c.Name, greeting, c.Name),
		Text:     fmt.Sprintf("%s, [Your Name] here. I have an idea that could help %s get more customers. OK if I send details?", greeting, c.Name),
		SocialDM: fmt.Sprintf("%s, I came across %s and liked what you are doing in %s. I would love to share an idea with you.", greeting, c.Name, industry),
	}
}

func companyPlace(c *entity.Company) string {
	if loc := entity.Value(c.Location); loc != "" {
		return loc
	}
	var parts []string
	for _, v := range []string{entity.Value(c.City), entity.Value(c.State), entity.Value(c.Country)} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
