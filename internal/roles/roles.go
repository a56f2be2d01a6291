// Package roles is the static role registry: for each role id, the
// alignment, optional night-action spec, targeting rules, visibility and
// voting configuration, and win condition. It is a read-only table, not a
// store — there is nothing here to persist.
package roles

// Alignment is a player's political faction.
type Alignment string

const (
	AlignmentMafia Alignment = "mafia"
	AlignmentTown  Alignment = "town"
	Neutral        Alignment = "neutral"
)

// ID identifies a role.
type ID string

const (
	Mafia       ID = "mafia"
	Detective   ID = "detective"
	Doctor      ID = "doctor"
	Townsperson ID = "townsperson"
)

// ActionType is the kind of night action a role may perform.
type ActionType string

const (
	ActionKill        ActionType = "KILL"
	ActionProtect      ActionType = "PROTECT"
	ActionInvestigate  ActionType = "INVESTIGATE"
	ActionNone         ActionType = "NONE"
)

// Priority returns the night-resolution tie-break priority for a given
// action type, used in the (priority, submittedAt, actionId) sort.
func (t ActionType) Priority() int {
	switch t {
	case ActionKill:
		return 10
	case ActionProtect:
		return 20
	case ActionInvestigate:
		return 30
	default:
		return 0
	}
}

// TargetFilter narrows which players are legal night-action targets beyond
// the alive/dead/self flags.
type TargetFilter string

const (
	FilterNonMafia TargetFilter = "nonMafia"
	FilterAnyAlive TargetFilter = "anyAlive"
	FilterNone     TargetFilter = "none"
)

// NightSpec describes a role's optional night action.
type NightSpec struct {
	Type            ActionType
	Priority        int
	MaxTargets      int
	TargetRequired  bool
}

// TargetRules constrains who a role may target, for night actions.
type TargetRules struct {
	AllowSelf  bool
	AllowAlive bool
	AllowDead  bool
	Filter     TargetFilter
}

// VoteVisibility controls whether a role sees tallies live, only the final
// result, or nothing.
type VoteVisibility string

const (
	TalliesLive  VoteVisibility = "live"
	TalliesFinal VoteVisibility = "final"
	TalliesNone  VoteVisibility = "none"
)

// Visibility captures what a role's holder is allowed to know.
type Visibility struct {
	KnowsTeammates   bool
	SeesVoteTallies  VoteVisibility
}

// Voting captures a role's voting rights.
type Voting struct {
	CanVote bool
	Weight  int
}

// WinCondition names who must survive or be eliminated for a role's side
// to win. It is descriptive only — internal/engine computes victory from
// alignment counts, not from this field; it documents intent for each role.
type WinCondition string

// Role is one immutable row of the registry.
type Role struct {
	ID          ID
	Alignment   Alignment
	Night       *NightSpec
	Targets     TargetRules
	Visibility  Visibility
	Voting      Voting
	WinCondition WinCondition
}

// Registry is the static table of all four roles.
var Registry = map[ID]Role{
	Mafia: {
		ID:        Mafia,
		Alignment: AlignmentMafia,
		Night: &NightSpec{
			Type:           ActionKill,
			Priority:       ActionKill.Priority(),
			MaxTargets:     1,
			TargetRequired: true,
		},
		Targets: TargetRules{
			AllowSelf:  false,
			AllowAlive: true,
			AllowDead:  false,
			Filter:     FilterNonMafia,
		},
		Visibility: Visibility{
			KnowsTeammates:  true,
			SeesVoteTallies: TalliesLive,
		},
		Voting:       Voting{CanVote: true, Weight: 1},
		WinCondition: "mafia survives until they equal or outnumber the rest",
	},
	Detective: {
		ID:        Detective,
		Alignment: AlignmentTown,
		Night: &NightSpec{
			Type:           ActionInvestigate,
			Priority:       ActionInvestigate.Priority(),
			MaxTargets:     1,
			TargetRequired: true,
		},
		Targets: TargetRules{
			AllowSelf:  false,
			AllowAlive: true,
			AllowDead:  false,
			Filter:     FilterAnyAlive,
		},
		Visibility: Visibility{
			KnowsTeammates:  false,
			SeesVoteTallies: TalliesLive,
		},
		Voting:       Voting{CanVote: true, Weight: 1},
		WinCondition: "all mafia eliminated",
	},
	Doctor: {
		ID:        Doctor,
		Alignment: AlignmentTown,
		Night: &NightSpec{
			Type:           ActionProtect,
			Priority:       ActionProtect.Priority(),
			MaxTargets:     1,
			TargetRequired: true,
		},
		Targets: TargetRules{
			AllowSelf:  true,
			AllowAlive: true,
			AllowDead:  false,
			Filter:     FilterAnyAlive,
		},
		Visibility: Visibility{
			KnowsTeammates:  false,
			SeesVoteTallies: TalliesLive,
		},
		Voting:       Voting{CanVote: true, Weight: 1},
		WinCondition: "all mafia eliminated",
	},
	Townsperson: {
		ID:           Townsperson,
		Alignment:    AlignmentTown,
		Night:        nil,
		Targets:      TargetRules{Filter: FilterNone},
		Visibility:   Visibility{KnowsTeammates: false, SeesVoteTallies: TalliesLive},
		Voting:       Voting{CanVote: true, Weight: 1},
		WinCondition: "all mafia eliminated",
	},
}

// Get returns the role row for id, and whether it exists.
func Get(id ID) (Role, bool) {
	r, ok := Registry[id]
	return r, ok
}

// Distribution computes the role counts for n players:
// always exactly one detective and one doctor, mafiaCount = max(1, n/3),
// remainder townspeople.
func Distribution(n int) map[ID]int {
	mafiaCount := n / 3
	if mafiaCount < 1 {
		mafiaCount = 1
	}
	town := n - mafiaCount - 2 // minus detective and doctor
	if town < 0 {
		town = 0
	}
	return map[ID]int{
		Mafia:       mafiaCount,
		Detective:   1,
		Doctor:      1,
		Townsperson: town,
	}
}
