package templates

import (
	"errors"
	"regexp"
	"strings"

	"github.com/octobees/leadgenius/api/internal/entity"
)

// ErrTemplateNotFound is returned for unknown template ids.
var ErrTemplateNotFound = errors.New("email template not found")

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// EmailTemplate is a static outreach template with {{variable}} placeholders.
type EmailTemplate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Vars     []string `json:"variables"`
}

// Rendered is a template with its placeholders substituted.
type Rendered struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// Render substitutes vars into subject and body. Keys are matched case-insensitively;
// placeholders without a value are left as written.
func (t EmailTemplate) Render(vars map[string]string) Rendered {
	return Rendered{
		TemplateID: t.ID,
		Subject:    Render(t.Subject, vars),
		Body:       Render(t.Body, vars),
	}
}

// Render substitutes {{name}} placeholders in text.
func Render(text string, vars map[string]string) string {
	lookup := make(map[string]string, len(vars))
	for k, v := range vars {
		lookup[strings.ToLower(k)] = v
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.ToLower(placeholder.FindStringSubmatch(match)[1])
		if val, ok := lookup[key]; ok && val != "" {
			return val
		}
		return match
	})
}

// Placeholders lists the distinct variable names used in text, in order of appearance.
func Placeholders(text string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// VariablesFor builds the standard variable set for a company and optional contact.
func VariablesFor(company *entity.Company, contact *entity.Contact, senderName string) map[string]string {
	vars := map[string]string{"sender_name": senderName}
	if company != nil {
		vars["company"] = company.Name
		vars["industry"] = entity.Value(company.Industry)
		vars["city"] = entity.Value(company.City)
		vars["website"] = entity.Value(company.Website)
	}
	if contact != nil {
		vars["first_name"] = contact.FirstName
		vars["last_name"] = contact.LastName
		vars["full_name"] = contact.Name()
		vars["title"] = entity.Value(contact.Title)
	}
	if vars["first_name"] == "" {
		vars["first_name"] = "there"
	}
	return vars
}

// Library is the in-memory template catalogue.
type Library struct {
	templates []EmailTemplate
	byID      map[string]EmailTemplate
}

// NewLibrary indexes the given templates, filling in their variable lists.
func NewLibrary(list []EmailTemplate) *Library {
	lib := &Library{byID: make(map[string]EmailTemplate, len(list))}
	for _, tpl := range list {
		if len(tpl.Vars) == 0 {
			tpl.Vars = Placeholders(tpl.Subject + "\n" + tpl.Body)
		}
		lib.templates = append(lib.templates, tpl)
		lib.byID[tpl.ID] = tpl
	}
	return lib
}

// Default returns the library with the built-in templates.
func Default() *Library {
	return NewLibrary(builtin)
}

// List returns every template.
func (l *Library) List() []EmailTemplate {
	out := make([]EmailTemplate, len(l.templates))
	copy(out, l.templates)
	return out
}

// Get looks a template up by id.
func (l *Library) Get(id string) (EmailTemplate, error) {
	tpl, ok := l.byID[id]
	if !ok {
		return EmailTemplate{}, ErrTemplateNotFound
	}
	return tpl, nil
}

var builtin = []EmailTemplate{
	{
		ID:       "intro",
		Name:     "Introduction",
		Category: "cold",
		Subject:  "Quick question for {{company}}",
		Body: "Hi {{first_name}},\n\n" +
			"I came across {{company}} while looking at {{industry}} teams in {{city}} and wanted to reach out. " +
			"We help companies like yours turn more website visitors into qualified conversations.\n\n" +
			"Would you be open to a 15 minute call next week?\n\n" +
			"Best,\n{{sender_name}}",
	},
	{
		ID:       "follow-up",
		Name:     "Follow-up",
		Category: "follow_up",
		Subject:  "Following up, {{first_name}}",
		Body: "Hi {{first_name}},\n\n" +
			"I wanted to follow up on my last note about {{company}}. " +
			"If now is not a good time, just let me know and I will circle back later.\n\n" +
			"Thanks,\n{{sender_name}}",
	},
	{
		ID:       "value-prop",
		Name:     "Value proposition",
		Category: "cold",
		Subject:  "An idea for {{company}}'s website",
		Body: "Hi {{first_name}},\n\n" +
			"I took a look at {{website}} and noticed a few quick wins that could help {{company}} generate more leads. " +
			"As {{title}}, you are probably the right person to talk to about this.\n\n" +
			"Happy to share the details if useful.\n\n" +
			"{{sender_name}}",
	},
	{
		ID:       "breakup",
		Name:     "Break-up",
		Category: "follow_up",
		Subject:  "Closing the loop",
		Body: "Hi {{first_name}},\n\n" +
			"I have not heard back, so I will assume the timing is not right for {{company}}. " +
			"If anything changes, my door is always open.\n\n" +
			"All the best,\n{{sender_name}}",
	},
}
