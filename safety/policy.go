package safety

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// DefaultRefusalReply is shown to the user when a blocked request is
// answered without a model and the policy names no reply.
const DefaultRefusalReply = "I can't help with that request. " +
	"I can tell you about the weather and current time in a city instead."

// Policy is an immutable set of blocked terms, the refusal prompt that
// replaces a blocked request for a model, and the reply shown directly to
// the user when no model is involved.
type Policy struct {
	terms    []string
	patterns []*regexp.Regexp
	refusal  string
	reply    string
}

type policyDocument struct {
	BlockedTerms  []string `yaml:"blocked_terms"`
	RefusalPrompt string   `yaml:"refusal_prompt"`
	RefusalReply  string   `yaml:"refusal_reply"`
}

var defaultPolicy = sync.OnceValue(func() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic(fmt.Sprintf("safety: embedded policy: %v", err))
	}
	return p
})

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() *Policy {
	return defaultPolicy()
}

// ParsePolicy builds a Policy from YAML.
func ParsePolicy(data []byte) (*Policy, error) {
	var doc policyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("safety: parse policy: %w", err)
	}
	if strings.TrimSpace(doc.RefusalPrompt) == "" {
		return nil, fmt.Errorf("safety: policy has no refusal prompt")
	}
	p, err := NewPolicy(doc.BlockedTerms, doc.RefusalPrompt)
	if err != nil {
		return nil, err
	}
	if reply := strings.TrimSpace(doc.RefusalReply); reply != "" {
		p.reply = reply
	}
	return p, nil
}

// NewPolicy compiles terms into whole-word, case-insensitive matchers.
// Terms are lowercased; duplicates and blanks are dropped.
func NewPolicy(terms []string, refusal string) (*Policy, error) {
	p := &Policy{refusal: refusal, reply: DefaultRefusalReply}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("safety: term %q: %w", t, err)
		}
		p.terms = append(p.terms, t)
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Terms returns the blocked terms in policy order.
func (p *Policy) Terms() []string {
	return append([]string(nil), p.terms...)
}

// Refusal returns the prompt substituted for a blocked request.
func (p *Policy) Refusal() string {
	return p.refusal
}

// RefusalReply returns the text shown to the user for a blocked request
// that no model will answer.
func (p *Policy) RefusalReply() string {
	return p.reply
}

// Match returns every blocked term found as a whole word in text, in
// policy order.
func (p *Policy) Match(text string) []string {
	text = strings.ToLower(text)
	var hits []string
	for i, re := range p.patterns {
		if re.MatchString(text) {
			hits = append(hits, p.terms[i])
		}
	}
	return hits
}
