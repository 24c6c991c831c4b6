package game

type Winner string

const (
	WinnerTown  Winner = "TOWN"
	WinnerMafia Winner = "MAFIA"
	WinnerNone  Winner = ""
)

// EvaluateWin applies the win conditions to the alive set. Town wins
// the moment no mafia-aligned seat is alive; mafia wins when it reaches
// parity with the rest of the table. Town precedence: a zero-mafia
// table is a town win even at zero town.
func EvaluateWin(alive []int, roles map[int]RoleID) Winner {
	mafia, others := 0, 0
	for _, s := range alive {
		if RoleOf(roles, s).MafiaAligned() {
			mafia++
		} else {
			others++
		}
	}
	if mafia == 0 {
		return WinnerTown
	}
	if mafia >= others {
		return WinnerMafia
	}
	return WinnerNone
}
