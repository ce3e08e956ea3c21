package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"buildhub/internal/model"
	"buildhub/internal/moderation"
	"buildhub/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type ModerationRuleService interface {
	CreateRule(actor Actor, req RuleRequest) (*model.ModerationRule, error)
	UpdateRule(actor Actor, id string, req RuleRequest) (*model.ModerationRule, error)
	DeleteRule(actor Actor, id string) error
	GetRule(actor Actor, id string) (*model.ModerationRule, error)
	ListRules(actor Actor) ([]model.ModerationRule, error)
	Preview(actor Actor, req PreviewRequest) (*PreviewResult, error)
	SeedFromYAML(r io.Reader) (*SeedResult, error)
}

type RuleRequest struct {
	Name      string  `json:"name" yaml:"name" binding:"required,max=100"`
	RuleType  string  `json:"rule_type" yaml:"rule_type" binding:"required"`
	Pattern   string  `json:"pattern" yaml:"pattern"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Action    string  `json:"action" yaml:"action" binding:"required"`
	Priority  *int    `json:"priority" yaml:"priority"`
	IsActive  *bool   `json:"is_active" yaml:"is_active"`
}

// PreviewRequest is a hypothetical comment to run through moderation
type PreviewRequest struct {
	Content     string `json:"content" binding:"required"`
	AuthorEmail string `json:"author_email"`
	IP          string `json:"ip"`
	Trusted     bool   `json:"trusted"`
}

type PreviewResult struct {
	Status      string   `json:"status"`
	SpamScore   float64  `json:"spam_score"`
	MatchedRule string   `json:"matched_rule,omitempty"`
	Reasons     []string `json:"reasons"`
}

type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type ruleFile struct {
	Rules []RuleRequest `yaml:"rules"`
}

const defaultRulePriority = 100

type moderationRuleService struct {
	ruleRepo  repository.ModerationRuleRepository
	moderator *moderation.Moderator
}

func NewModerationRuleService(ruleRepo repository.ModerationRuleRepository, moderator *moderation.Moderator) ModerationRuleService {
	return &moderationRuleService{ruleRepo: ruleRepo, moderator: moderator}
}

func (s *moderationRuleService) CreateRule(actor Actor, req RuleRequest) (*model.ModerationRule, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	rule := &model.ModerationRule{Priority: defaultRulePriority, IsActive: true}
	if err := applyRule(rule, req); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	zap.L().Info("moderation rule created",
		zap.String("rule_id", rule.ID),
		zap.String("name", rule.Name),
		zap.String("by", actor.UserID))
	return rule, nil
}

func (s *moderationRuleService) UpdateRule(actor Actor, id string, req RuleRequest) (*model.ModerationRule, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	rule, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := applyRule(rule, req); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Update(rule); err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return rule, nil
}

func (s *moderationRuleService) DeleteRule(actor Actor, id string) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	if _, err := s.find(id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(id)
}

func (s *moderationRuleService) GetRule(actor Actor, id string) (*model.ModerationRule, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.find(id)
}

func (s *moderationRuleService) ListRules(actor Actor) ([]model.ModerationRule, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return s.ruleRepo.List()
}

// Preview shows what the current active rules would do with a comment
// without storing anything.
func (s *moderationRuleService) Preview(actor Actor, req PreviewRequest) (*PreviewResult, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	rules, err := s.ruleRepo.ListActive()
	if err != nil {
		return nil, err
	}
	moderation.SortRules(rules)

	d := s.moderator.Evaluate(moderation.Input{
		Content:     req.Content,
		AuthorEmail: req.AuthorEmail,
		IP:          req.IP,
		Trusted:     req.Trusted,
	}, rules)

	result := &PreviewResult{Status: d.Status, SpamScore: d.Score, Reasons: d.Reasons}
	if result.Reasons == nil {
		result.Reasons = []string{}
	}
	if d.Rule != nil {
		result.MatchedRule = d.Rule.Name
	}
	return result, nil
}

// SeedFromYAML upserts rules by name from a document of the form
//
//	rules:
//	  - name: casino
//	    rule_type: keyword
//	    pattern: casino, poker
//	    action: spam
//	    priority: 10
//
// Every rule is validated before anything is written.
func (s *moderationRuleService) SeedFromYAML(r io.Reader) (*SeedResult, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	for i, req := range file.Rules {
		var probe model.ModerationRule
		if err := applyRule(&probe, req); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, req.Name, err)
		}
	}

	result := &SeedResult{}
	for _, req := range file.Rules {
		existing, err := s.ruleRepo.FindByName(strings.TrimSpace(req.Name))
		switch {
		case err == nil:
			if err := applyRule(existing, req); err != nil {
				return result, err
			}
			if err := s.ruleRepo.Update(existing); err != nil {
				return result, fmt.Errorf("update rule %s: %w", existing.Name, err)
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			rule := &model.ModerationRule{Priority: defaultRulePriority, IsActive: true}
			if err := applyRule(rule, req); err != nil {
				return result, err
			}
			if err := s.ruleRepo.Create(rule); err != nil {
				return result, fmt.Errorf("create rule %s: %w", rule.Name, err)
			}
			result.Created++
		default:
			return result, err
		}
	}

	zap.L().Info("moderation rules seeded", zap.Int("created", result.Created), zap.Int("updated", result.Updated))
	return result, nil
}

func applyRule(rule *model.ModerationRule, req RuleRequest) error {
	rule.Name = strings.TrimSpace(req.Name)
	rule.RuleType = strings.ToLower(strings.TrimSpace(req.RuleType))
	rule.Pattern = strings.TrimSpace(req.Pattern)
	rule.Threshold = req.Threshold
	rule.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if rule.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if err := moderation.ValidateRule(rule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

func (s *moderationRuleService) find(id string) (*model.ModerationRule, error) {
	rule, err := s.ruleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}
