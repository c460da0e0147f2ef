package ledger

import (
	"fmt"
	"math"
)

// Kind identifies a mini-game.
type Kind string

const (
	CoinFlip    Kind = "coinFlip"
	NumberGuess Kind = "numberGuess"
	Reaction    Kind = "reaction"
	MatchCards  Kind = "matchCards"
)

// ExchangeRate is the number of points one token costs in the shop.
const ExchangeRate = 10

// ReactionTargetMs is the reaction time that scores full accuracy.
const ReactionTargetMs = 400

const (
	matchBaseReward  = 150
	matchPerSecond   = 2
	matchRewardFloor = 50
	reactionWinAbove = 50.0
	matchCardsPairs  = 6
	defaultMaxWager  = 500
)

// GameRule is the fixed reward policy of one game kind.
type GameRule struct {
	Kind          Kind    `json:"kind"`
	Name          string  `json:"name"`
	Wager         int64   `json:"wager"`
	MinWager      int64   `json:"min_wager"`
	MaxWager      int64   `json:"max_wager"`
	WinMultiplier float64 `json:"win_multiplier"`
	PointsReward  int64   `json:"points_reward"`
	TimeScaled    bool    `json:"time_scaled"`
	TargetMs      int64   `json:"target_ms,omitempty"`
	Pairs         int     `json:"pairs,omitempty"`
}

var rules = []GameRule{
	{Kind: CoinFlip, Name: "Coin Flip", Wager: 10, MinWager: 5, MaxWager: defaultMaxWager, WinMultiplier: 2, PointsReward: 50},
	{Kind: NumberGuess, Name: "Number Guess", Wager: 10, MinWager: 5, MaxWager: defaultMaxWager, WinMultiplier: 3, PointsReward: 100},
	{Kind: Reaction, Name: "Reaction Time", Wager: 15, MinWager: 10, MaxWager: defaultMaxWager, WinMultiplier: 2.5, PointsReward: 75, TargetMs: ReactionTargetMs},
	{Kind: MatchCards, Name: "Match Cards", Wager: 20, MinWager: 15, MaxWager: defaultMaxWager, WinMultiplier: 2.5, PointsReward: matchBaseReward, TimeScaled: true, Pairs: matchCardsPairs},
}

// Rules returns a copy of the reward table in display order.
func Rules() []GameRule {
	out := make([]GameRule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor looks up the rule of kind.
func RuleFor(kind Kind) (GameRule, bool) {
	for _, r := range rules {
		if r.Kind == kind {
			return r, true
		}
	}
	return GameRule{}, false
}

// ParseKind validates a client supplied game identifier.
func ParseKind(s string) (Kind, error) {
	if _, ok := RuleFor(Kind(s)); !ok {
		return "", fmt.Errorf("unknown game %q", s)
	}
	return Kind(s), nil
}

// MaxReward is the most points a won game of this kind may credit. For the
// time-scaled game a known elapsed time lowers the ceiling to what that time
// earns.
func (r GameRule) MaxReward(elapsedSeconds *float64) int64 {
	if r.TimeScaled && elapsedSeconds != nil {
		return MatchPairsReward(*elapsedSeconds)
	}
	return r.PointsReward
}

// MatchPairsReward is max(50, round(150 - 2*elapsed)). Negative elapsed
// times count as zero.
func MatchPairsReward(elapsedSeconds float64) int64 {
	if elapsedSeconds < 0 || math.IsNaN(elapsedSeconds) {
		elapsedSeconds = 0
	}
	p := math.Round(matchBaseReward - matchPerSecond*elapsedSeconds)
	if p < matchRewardFloor {
		return matchRewardFloor
	}
	return int64(p)
}

// ReactionAccuracy is max(0, 100 - |reactionMs - targetMs| / 2).
func ReactionAccuracy(reactionMs, targetMs int64) float64 {
	d := math.Abs(float64(reactionMs - targetMs))
	return math.Max(0, 100-d/2)
}

// ReactionWon reports whether the accuracy beats the win threshold.
func ReactionWon(reactionMs, targetMs int64) bool {
	return ReactionAccuracy(reactionMs, targetMs) > reactionWinAbove
}
