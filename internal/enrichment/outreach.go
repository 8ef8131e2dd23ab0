package enrichment

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/octobees/leadgenius/api/internal/entity"
	"github.com/octobees/leadgenius/api/internal/webhook"
)

// scriptHeading matches a heading line such as "## Call Script", "EMAIL:" or "**Social DM**".
var scriptHeading = regexp.MustCompile(`(?im)^[#* \t]*(cold[ \t]+)?(call|phone|email|text|sms|social([ \t]+media)?([ \t]+dm)?|linkedin([ \t]+dm)?|dm)([ \t]+(script|message|template))?[* \t]*:?[* \t]*$`)

var scriptKeys = map[string][]string{
	"call":      {"call_script", "callscript", "call", "phone_script"},
	"email":     {"email_script", "emailscript", "email"},
	"text":      {"text_script", "textscript", "text", "sms_script", "sms"},
	"social_dm": {"social_dm_script", "socialdmscript", "social_dm", "dm_script", "linkedin_dm"},
}

// GenerateOutreach produces call, email, text and social DM scripts for the
// company, optionally addressed to one of its contacts, and stores them.
func (e *Enricher) GenerateOutreach(ctx context.Context, companyID uuid.UUID, contactID *uuid.UUID) (Result, error) {
	company, err := e.companies.Get(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	var contact *entity.Contact
	if contactID != nil {
		contact, err = e.contacts.Get(ctx, *contactID)
		if err != nil {
			return Result{}, err
		}
		if contact.CompanyID != company.ID {
			return Result{}, fmt.Errorf("%w: contact %s, company %s", ErrContactNotInCompany, contact.ID, company.ID)
		}
	}
	settings, err := e.loadSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	payload := companyPayload(company)
	contextText := companyContext(company)
	if contact != nil {
		for k, v := range contactPayload(contact, company) {
			payload[k] = v
		}
		contextText += "\nContact: " + contact.Name()
		if title := entity.Value(contact.Title); title != "" {
			contextText += ", " + title
		}
	}

	var scripts entity.OutreachScripts
	res := e.generateText(ctx, settings, textRequest{
		operation: "outreach_scripts",
		kind:      entity.WebhookOutreachScripts,
		payload:   payload,
		instruction: "Write four short outreach scripts for this prospect under the headings " +
			"'Call Script', 'Email Script', 'Text Script' and 'Social DM Script'.",
		context: contextText,
		demo: func() string {
			scripts = demoScripts(company, contact)
			return formatScripts(scripts)
		},
	})

	if scripts.Empty() {
		body := res.raw
		if len(body) == 0 {
			body = []byte(res.Content)
		}
		scripts = parseScripts(body, res.Content)
		if !scripts.Empty() {
			res.Content = formatScripts(scripts)
		}
	}
	if scripts.Empty() {
		// Unstructured answers are kept whole as the email script.
		scripts.Email = res.Content
	}

	if err := e.companies.UpdateScripts(ctx, company.ID, scripts); err != nil {
		return Result{}, fmt.Errorf("save outreach scripts: %w", err)
	}
	res.Data = scripts
	return res, nil
}

// parseScripts reads the four scripts from a JSON answer, with any key casing
// and nesting, or from text split by headings.
func parseScripts(body []byte, content string) entity.OutreachScripts {
	if gjson.ValidBytes(body) {
		if scripts := scriptsFrom(gjson.ParseBytes(body), 0); !scripts.Empty() {
			return scripts
		}
	}
	if obj, ok := webhook.ExtractObject(body); ok {
		if scripts := scriptsFrom(obj, 0); !scripts.Empty() {
			return scripts
		}
	}
	return splitByHeadings(content)
}

func scriptsFrom(value gjson.Result, depth int) entity.OutreachScripts {
	var scripts entity.OutreachScripts
	if depth > 3 {
		return scripts
	}
	if value.IsArray() {
		for _, item := range value.Array() {
			if found := scriptsFrom(item, depth+1); !found.Empty() {
				return found
			}
		}
		return scripts
	}
	if !value.IsObject() {
		return scripts
	}

	fields := map[string]gjson.Result{}
	var nested []gjson.Result
	value.ForEach(func(key, v gjson.Result) bool {
		name := normalizeKey(key.String())
		if _, seen := fields[name]; !seen {
			fields[name] = v
		}
		if v.IsObject() || v.IsArray() {
			nested = append(nested, v)
		}
		return true
	})

	pick := func(names []string) string {
		for _, name := range names {
			if v, ok := fields[normalizeKey(name)]; ok && v.Type == gjson.String {
				if s := strings.TrimSpace(v.String()); s != "" {
					return s
				}
			}
		}
		return ""
	}
	scripts.Call = pick(scriptKeys["call"])
	scripts.Email = pick(scriptKeys["email"])
	scripts.Text = pick(scriptKeys["text"])
	scripts.SocialDM = pick(scriptKeys["social_dm"])
	if !scripts.Empty() {
		return scripts
	}

	for _, v := range nested {
		if found := scriptsFrom(v, depth+1); !found.Empty() {
			return found
		}
	}
	return scripts
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return strings.ReplaceAll(key, " ", "")
}

// splitByHeadings assigns each section of text under a recognised heading to its script.
func splitByHeadings(content string) entity.OutreachScripts {
	var scripts entity.OutreachScripts
	matches := scriptHeading.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(content[m[1]:end])
		if body == "" {
			continue
		}
		label := strings.ToLower(content[m[4]:m[5]])
		switch {
		case label == "call" || label == "phone":
			scripts.Call = body
		case label == "email":
			scripts.Email = body
		case label == "text" || label == "sms":
			scripts.Text = body
		default:
			scripts.SocialDM = body
		}
	}
	return scripts
}

func formatScripts(s entity.OutreachScripts) string {
	var b strings.Builder
	write := func(heading, body string) {
		if body == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(heading)
		b.WriteString("\n")
		b.WriteString(body)
	}
	write("Call Script", s.Call)
	write("Email Script", s.Email)
	write("Text Script", s.Text)
	write("Social DM Script", s.SocialDM)
	return b.String()
}
