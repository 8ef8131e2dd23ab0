package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern      = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	emailTokenPattern = regexp.MustCompile(`(?i)[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}`)
	idnaProfile       = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	defaultHTTPTimeout = 5 * time.Second
)

// socialNetwork describes one network a company or contact can link to:
// the payload keys that name it, the hosts its profile URLs live on and the
// SocialLinks field it fills.
type socialNetwork struct {
	keys   []string
	hosts  []string
	assign func(*SocialLinks, string)
}

var socialNetworks = []socialNetwork{
	{
		keys:   []string{"linkedin", "linkedin_url", "linkedinurl"},
		hosts:  []string{"linkedin.com"},
		assign: func(l *SocialLinks, v string) { l.LinkedIn = v },
	},
	{
		keys:   []string{"facebook", "facebook_url", "facebookurl", "fb"},
		hosts:  []string{"facebook.com", "fb.com"},
		assign: func(l *SocialLinks, v string) { l.Facebook = v },
	},
	{
		keys:   []string{"instagram", "instagram_url", "instagramurl", "ig"},
		hosts:  []string{"instagram.com"},
		assign: func(l *SocialLinks, v string) { l.Instagram = v },
	},
	{
		keys:   []string{"twitter", "twitter_url", "twitterurl", "x"},
		hosts:  []string{"twitter.com", "x.com"},
		assign: func(l *SocialLinks, v string) { l.Twitter = v },
	},
}

func networkForKey(key string) (*socialNetwork, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i := range socialNetworks {
		if slices.Contains(socialNetworks[i].keys, key) {
			return &socialNetworks[i], true
		}
	}
	return nil, false
}

func (n *socialNetwork) ownsHost(host string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return false
	}
	for _, domain := range n.hosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// CleanedData is enrichment output after validation and normalisation.
type CleanedData struct {
	Emails  []string    `json:"emails"`
	Phones  []string    `json:"phones"`
	Socials SocialLinks `json:"socials"`
	Address string      `json:"address"`
	Website string      `json:"website"`
}

// SocialLinks stores the canonical URL for each supported network.
type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// RawEnrichedData is the unvalidated contact data pulled out of a webhook response.
type RawEnrichedData struct {
	Emails      []string
	Phones      []string
	SocialLinks map[string][]string
	Addresses   []string
	Website     string
}

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// HTTPClient abstracts HTTP requests for validation purposes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DataProcessor encapsulates the data cleaning and validation rules applied
// to enrichment results before they are written to a company or contact.
type DataProcessor struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	httpClient    HTTPClient
}

// DataProcessorOption configures optional dependencies.
type DataProcessorOption func(*DataProcessor)

// WithDNSResolver overrides the default DNS resolver. A nil resolver skips the MX check.
func WithDNSResolver(resolver DNSResolver) DataProcessorOption {
	return func(p *DataProcessor) {
		p.dnsResolver = resolver
	}
}

// WithLinkChecker makes social links count only when they resolve.
func WithLinkChecker(client HTTPClient) DataProcessorOption {
	return func(p *DataProcessor) {
		p.httpClient = client
	}
}

// NewDataProcessor builds a processor with sensible defaults. Social links are
// not fetched unless a link checker is configured.
func NewDataProcessor(defaultRegion string, opts ...DataProcessorOption) *DataProcessor {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	p := &DataProcessor{
		DefaultRegion: region,
		dnsResolver:   net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.DefaultRegion == "" {
		p.DefaultRegion = defaultPhoneRegion
	}
	return p
}

// Process executes all cleaning and validation rules and returns structured data.
func (p *DataProcessor) Process(ctx context.Context, input RawEnrichedData) CleanedData {
	return CleanedData{
		Emails:  p.cleanEmails(ctx, input.Emails),
		Phones:  p.normalizePhones(input.Phones),
		Socials: p.validateSocials(ctx, input.SocialLinks),
		Address: selectBestAddress(input.Addresses),
		Website: sanitizeWebsite(input.Website),
	}
}

// FirstEmail returns the first deliverable address found in the candidates.
// Candidates may be free text; every address-looking token is considered.
func (p *DataProcessor) FirstEmail(ctx context.Context, candidates ...string) string {
	var tokens []string
	for _, candidate := range candidates {
		tokens = append(tokens, emailTokenPattern.FindAllString(candidate, -1)...)
	}
	emails := p.cleanEmails(ctx, tokens)
	if len(emails) == 0 {
		return ""
	}
	return emails[0]
}

// NormalizePhone formats a phone number as E.164, or returns "" when invalid.
func (p *DataProcessor) NormalizePhone(raw string) string {
	return normalizePhone(raw, p.DefaultRegion)
}

func (p *DataProcessor) cleanEmails(ctx context.Context, emails []string) []string {
	if len(emails) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(emails))
	domainCache := make(map[string]bool)
	valid := make([]string, 0, len(emails))

	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || !emailPattern.MatchString(email) {
			continue
		}
		parts := strings.SplitN(email, "@", 2)
		domain := parts[1]
		if !isDomainValid(domain) {
			continue
		}
		asciiDomain, err := idnaProfile.ToASCII(domain)
		if err != nil || asciiDomain == "" {
			continue
		}
		if ok, cached := domainCache[asciiDomain]; cached {
			if !ok {
				continue
			}
		} else {
			hasMX := p.hasMXRecord(ctx, asciiDomain)
			domainCache[asciiDomain] = hasMX
			if !hasMX {
				continue
			}
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		valid = append(valid, email)
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

func (p *DataProcessor) normalizePhones(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	valid := make([]string, 0, len(candidates))

	for _, raw := range candidates {
		normalized := normalizePhone(raw, p.DefaultRegion)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		valid = append(valid, normalized)
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

func (p *DataProcessor) validateSocials(ctx context.Context, socials map[string][]string) SocialLinks {
	result := SocialLinks{}
	filled := make(map[*socialNetwork]bool)

	for key, candidates := range socials {
		network, ok := networkForKey(key)
		if !ok || filled[network] {
			continue
		}
		for _, raw := range candidates {
			if link, ok := p.cleanSocialLink(ctx, network, raw); ok {
				network.assign(&result, link)
				filled[network] = true
				break
			}
		}
	}
	return result
}

func (p *DataProcessor) cleanSocialLink(ctx context.Context, network *socialNetwork, raw string) (string, bool) {
	u, err := sanitizeURL(raw)
	if err != nil || !network.ownsHost(u.Hostname()) {
		return "", false
	}
	stripTracking(u)
	if p.httpClient != nil && !p.urlResolves(ctx, u.String()) {
		return "", false
	}
	return u.String(), true
}

func (p *DataProcessor) hasMXRecord(ctx context.Context, domain string) bool {
	if p.dnsResolver == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	records, err := p.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func (p *DataProcessor) urlResolves(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err = p.httpClient.Do(getReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func sanitizeWebsite(raw string) string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func selectBestAddress(addresses []string) string {
	var best string
	var bestScore int
	for _, raw := range addresses {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		score := addressScore(addr)
		if score > bestScore {
			bestScore = score
			best = addr
		}
	}
	return best
}

func addressScore(addr string) int {
	segments := strings.FieldsFunc(addr, func(r rune) bool { return r == ',' || r == ';' })
	return len(segments)*1000 + len([]rune(addr))
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
