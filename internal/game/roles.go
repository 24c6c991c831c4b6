package game

type RoleID string

const (
	RoleTown      RoleID = "TOWN"
	RoleSheriff   RoleID = "SHERIFF"
	RoleMafia     RoleID = "MAFIA"
	RoleMafiaBoss RoleID = "MAFIA_BOSS"
)

type Alignment string

const (
	AlignmentTown  Alignment = "TOWN"
	AlignmentMafia Alignment = "MAFIA"
)

func (r RoleID) Alignment() Alignment {
	if r == RoleMafia || r == RoleMafiaBoss {
		return AlignmentMafia
	}
	return AlignmentTown
}

func (r RoleID) MafiaAligned() bool {
	return r.Alignment() == AlignmentMafia
}

func (r RoleID) DisplayName() string {
	switch r {
	case RoleSheriff:
		return "Sheriff"
	case RoleMafia:
		return "Mafia"
	case RoleMafiaBoss:
		return "Mafia Boss"
	default:
		return "Town"
	}
}

// NumSeats is fixed: the ruleset is written for a full 10-player table.
const NumSeats = 10

// RolePool returns the fixed role composition for a 10-seat game:
// 1 boss, 2 mafia, 1 sheriff, 6 town. The caller shuffles before
// assigning seats.
func RolePool() []RoleID {
	return []RoleID{
		RoleMafiaBoss, RoleMafia, RoleMafia, RoleSheriff,
		RoleTown, RoleTown, RoleTown, RoleTown, RoleTown, RoleTown,
	}
}
