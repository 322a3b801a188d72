// Package filter implements the content policy: a deterministic decision
// engine over a point-in-time policy snapshot, plus the store that
// persists the policy and the PIN-guarded service mutating it.
package filter

import (
	"strings"

	"github.com/maegy2011/orchids-tube-sub000/internal/model"
)

// Input carries the content metadata one decision looks at.
type Input struct {
	ID          string
	Type        model.ContentType
	Title       string
	Description string
	Keywords    []string
	ChannelID   string
	// Restricted forces category inference even when the stored policy
	// has defaultDeny off.
	Restricted bool
}

// whitelistKey identifies one whitelist entry.
type whitelistKey struct {
	ID   string
	Type model.ContentType
}

// Snapshot is an immutable view of the whole policy at one instant.
// Decide is a pure function of (Input, Snapshot): identical arguments
// always produce the identical decision.
type Snapshot struct {
	Config     model.FilterConfig
	Categories []model.CategoryDefinition // declared order
	Whitelist  map[whitelistKey]struct{}
	Keywords   []string // lowercased, deduplicated
}

// allowedSet returns the allowed-and-enabled category ids.
func (s *Snapshot) allowedSet() map[string]bool {
	enabled := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		enabled[c.ID] = c.Enabled
	}
	allowed := make(map[string]bool, len(s.Config.AllowedCategories))
	for _, id := range s.Config.AllowedCategories {
		if enabled[id] {
			allowed[id] = true
		}
	}
	return allowed
}

// AllowedEnabledCategories returns the allowed-and-enabled category ids
// in declared order. The diversifier biases queries toward these.
func (s *Snapshot) AllowedEnabledCategories() []string {
	allowed := s.allowedSet()
	out := make([]string, 0, len(allowed))
	for _, c := range s.Categories {
		if allowed[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// Whitelisted reports whether (id, type) has an explicit allow entry.
func (s *Snapshot) Whitelisted(id string, typ model.ContentType) bool {
	_, ok := s.Whitelist[whitelistKey{ID: id, Type: typ}]
	return ok
}

// Decide evaluates the policy for one piece of content. Priority order,
// first match wins:
//
//  1. filtering globally disabled → allow
//  2. whitelisted (id,type) or whitelisted channel → allow
//  3. blocked keyword substring in title/description → deny
//  4. default-deny (or restricted request): infer category, allow only
//     when the inferred category is allowed; no inference → deny
//  5. default allow
func Decide(in Input, snap *Snapshot) model.FilterDecision {
	if !snap.Config.Enabled {
		return model.FilterDecision{Allowed: true, Reason: "filter disabled"}
	}

	if snap.Whitelisted(in.ID, in.Type) {
		return model.FilterDecision{Allowed: true, Reason: "whitelisted"}
	}
	if in.ChannelID != "" && snap.Whitelisted(in.ChannelID, model.ContentChannel) {
		return model.FilterDecision{Allowed: true, Reason: "whitelisted"}
	}

	title := strings.ToLower(in.Title)
	desc := strings.ToLower(in.Description)
	for _, kw := range snap.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) || strings.Contains(desc, kw) {
			return model.FilterDecision{Allowed: false, Reason: "blocked keyword: " + kw}
		}
	}

	if snap.Config.DefaultDeny || in.Restricted {
		category := InferCategory(in, snap.Categories)
		if category == "" {
			return model.FilterDecision{Allowed: false, Reason: "no allowed category matched"}
		}
		if snap.allowedSet()[category] {
			return model.FilterDecision{Allowed: true, Reason: "allowed category: " + category}
		}
		return model.FilterDecision{Allowed: false, Reason: "no allowed category matched"}
	}

	return model.FilterDecision{Allowed: true, Reason: "default allow"}
}

// InferCategory scans title, description and keywords against each
// category's term dictionary in declared order. The first category with at
// least one term match wins; no match returns "".
func InferCategory(in Input, categories []model.CategoryDefinition) string {
	haystack := strings.ToLower(in.Title + " " + in.Description + " " + strings.Join(in.Keywords, " "))
	if strings.TrimSpace(haystack) == "" {
		return ""
	}
	for _, c := range categories {
		for _, term := range TermsFor(c.ID) {
			if strings.Contains(haystack, strings.ToLower(term)) {
				return c.ID
			}
		}
	}
	return ""
}
