package moderation

import (
	"buildhub/internal/model"
)

// Decision is the outcome of moderating one comment.
type Decision struct {
	Status  string
	Score   float64
	Rule    *model.ModerationRule
	Reasons []string
}

type Moderator struct {
	cfg    Config
	scorer *Scorer
}

func New(cfg Config) *Moderator {
	return &Moderator{cfg: cfg, scorer: NewScorer(cfg)}
}

// Evaluate scores the comment, then lets the first matching rule force the
// outcome. Without a matching rule, trusted authors are approved and everyone
// else is thresholded on the score.
func (m *Moderator) Evaluate(in Input, rules []model.ModerationRule) Decision {
	score, reasons := m.scorer.Score(in.Content)
	d := Decision{Score: score, Reasons: reasons}

	if rule := FirstMatch(rules, in); rule != nil {
		d.Rule = rule
		d.Status = ActionStatus(rule.Action)
		d.Reasons = append(d.Reasons, "matched rule: "+rule.Name)
		return d
	}

	if in.Trusted {
		d.Status = model.CommentStatusApproved
		return d
	}

	d.Status = m.StatusForScore(score)
	return d
}

// StatusForScore applies the default thresholds.
func (m *Moderator) StatusForScore(score float64) string {
	switch {
	case score > m.cfg.SpamThreshold:
		return model.CommentStatusSpam
	case score > m.cfg.PendingThreshold:
		return model.CommentStatusPending
	default:
		return model.CommentStatusApproved
	}
}

func (m *Moderator) Scorer() *Scorer {
	return m.scorer
}
