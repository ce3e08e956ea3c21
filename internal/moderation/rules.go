package moderation

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"unicode/utf8"

	"buildhub/internal/model"
)

// Input is everything a rule can look at.
type Input struct {
	Content     string
	AuthorEmail string
	IP          string
	Trusted     bool
}

var (
	ErrUnknownRuleType   = errors.New("unknown rule type")
	ErrUnknownRuleAction = errors.New("unknown rule action")
)

// ValidateRule checks a rule before it is stored.
func ValidateRule(rule *model.ModerationRule) error {
	switch rule.Action {
	case model.RuleActionApprove, model.RuleActionReject, model.RuleActionSpam, model.RuleActionHold:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleAction, rule.Action)
	}

	switch rule.RuleType {
	case model.RuleTypeKeyword, model.RuleTypeEmailDomain:
		if len(splitPattern(rule.Pattern)) == 0 {
			return fmt.Errorf("%s rule needs a pattern", rule.RuleType)
		}
	case model.RuleTypeIP:
		p := strings.TrimSpace(rule.Pattern)
		if strings.Contains(p, "/") {
			if _, err := netip.ParsePrefix(p); err != nil {
				return fmt.Errorf("invalid CIDR %q: %w", p, err)
			}
		} else if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("invalid IP %q: %w", p, err)
		}
	case model.RuleTypeLength, model.RuleTypeLinkCount, model.RuleTypeCapsRatio:
		switch strings.ToLower(strings.TrimSpace(rule.Pattern)) {
		case "", "gt", "lt":
		default:
			return fmt.Errorf("comparison must be gt or lt, got %q", rule.Pattern)
		}
		if rule.Threshold < 0 {
			return errors.New("threshold must not be negative")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleType, rule.RuleType)
	}
	return nil
}

// SortRules orders rules by ascending priority, keeping creation order for ties.
func SortRules(rules []model.ModerationRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

// FirstMatch returns the first active rule, in slice order, that matches in.
func FirstMatch(rules []model.ModerationRule, in Input) *model.ModerationRule {
	for i := range rules {
		if !rules[i].IsActive {
			continue
		}
		if Matches(&rules[i], in) {
			return &rules[i]
		}
	}
	return nil
}

// Matches reports whether a single rule applies to in.
func Matches(rule *model.ModerationRule, in Input) bool {
	switch rule.RuleType {
	case model.RuleTypeKeyword:
		content := strings.ToLower(in.Content)
		for _, term := range splitPattern(rule.Pattern) {
			if strings.Contains(content, term) {
				return true
			}
		}
	case model.RuleTypeEmailDomain:
		domain := emailDomain(in.AuthorEmail)
		if domain == "" {
			return false
		}
		for _, d := range splitPattern(rule.Pattern) {
			if strings.TrimPrefix(d, "@") == domain {
				return true
			}
		}
	case model.RuleTypeIP:
		return matchIP(strings.TrimSpace(rule.Pattern), in.IP)
	case model.RuleTypeLength:
		return compare(rule.Pattern, float64(utf8.RuneCountInString(strings.TrimSpace(in.Content))), rule.Threshold)
	case model.RuleTypeLinkCount:
		return compare(rule.Pattern, float64(countLinks(in.Content)), rule.Threshold)
	case model.RuleTypeCapsRatio:
		_, ratio := capsRatio(in.Content)
		return compare(rule.Pattern, ratio, rule.Threshold)
	}
	return false
}

// ActionStatus maps a rule action onto a comment status.
func ActionStatus(action string) string {
	switch action {
	case model.RuleActionApprove:
		return model.CommentStatusApproved
	case model.RuleActionReject:
		return model.CommentStatusRejected
	case model.RuleActionSpam:
		return model.CommentStatusSpam
	default:
		return model.CommentStatusPending
	}
}

func splitPattern(pattern string) []string {
	var out []string
	for _, p := range strings.Split(pattern, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

func matchIP(pattern, ip string) bool {
	if pattern == "" || ip == "" {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return pattern == ip
	}
	addr = addr.Unmap()
	if strings.Contains(pattern, "/") {
		prefix, err := netip.ParsePrefix(pattern)
		if err != nil {
			return false
		}
		return prefix.Contains(addr)
	}
	want, err := netip.ParseAddr(pattern)
	if err != nil {
		return false
	}
	return want.Unmap() == addr
}

// compare applies "gt" (default) or "lt" to value against threshold.
func compare(op string, value, threshold float64) bool {
	if strings.EqualFold(strings.TrimSpace(op), "lt") {
		return value < threshold
	}
	return value > threshold
}
