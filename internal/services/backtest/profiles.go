package backtest

import (
	"fmt"

	"TazeAI/internal/domain/models"
	"TazeAI/pkg/config"
)

// Rule is a trading predicate over a score and its risk label.
type Rule func(score float64, risk models.RiskLevel) bool

// Profile is a named pair of buy and sell rules.
type Profile struct {
	Name string
	Buy  Rule
	Sell Rule
}

// Never is a rule that is always false.
func Never(float64, models.RiskLevel) bool { return false }

// ProfileFromConfig turns configured thresholds into rules: buy when any
// condition holds, sell when score < SellBelow.
func ProfileFromConfig(p config.Profile) (Profile, error) {
	conds := make([]config.BuyCondition, 0, len(p.Buy))
	for _, c := range p.Buy {
		if c.Risk != "" && !validRisk(models.RiskLevel(c.Risk)) {
			return Profile{}, fmt.Errorf("profile %s: unknown risk label %q", p.Name, c.Risk)
		}
		conds = append(conds, c)
	}
	sellBelow := p.SellBelow
	return Profile{
		Name: p.Name,
		Buy: func(score float64, risk models.RiskLevel) bool {
			for _, c := range conds {
				if score > c.ScoreAbove && (c.Risk == "" || models.RiskLevel(c.Risk) == risk) {
					return true
				}
			}
			return false
		},
		Sell: func(score float64, _ models.RiskLevel) bool { return score < sellBelow },
	}, nil
}

// ProfilesFromConfig converts every configured profile, keeping order.
func ProfilesFromConfig(ps []config.Profile) ([]Profile, error) {
	out := make([]Profile, 0, len(ps))
	for _, p := range ps {
		prof, err := ProfileFromConfig(p)
		if err != nil {
			return nil, err
		}
		out = append(out, prof)
	}
	return out, nil
}

// DefaultProfiles returns Conservador, Moderado and Agressivo.
func DefaultProfiles() []Profile {
	out, err := ProfilesFromConfig(config.DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return out
}

// FindProfile looks a profile up by name.
func FindProfile(ps []Profile, name string) (Profile, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

func validRisk(r models.RiskLevel) bool {
	switch r {
	case models.RiskLow, models.RiskModerate, models.RiskHigh:
		return true
	}
	return false
}
