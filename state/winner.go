package state

// DetectWinner checks every row, then every column, then the two diagonals,
// and returns the team owning the first complete line. A line counts only
// when all of its size cells hold the same non-empty digit.
func DetectWinner(id ID, size int) Team {
	if t := winnerRow(id, size); t != None {
		return t
	}
	if t := winnerCol(id, size); t != None {
		return t
	}
	return winnerDiag(id, size)
}

func winnerRow(id ID, size int) Team {
	for r := 0; r < size; r++ {
		if t := line(id, r*size, 1, size); t != None {
			return t
		}
	}
	return None
}

func winnerCol(id ID, size int) Team {
	for c := 0; c < size; c++ {
		if t := line(id, c, size, size); t != None {
			return t
		}
	}
	return None
}

func winnerDiag(id ID, size int) Team {
	if t := line(id, 0, size+1, size); t != None {
		return t
	}
	return line(id, size-1, size-1, size)
}

// line reads n digits starting at cell start, stride apart.
func line(id ID, start, stride, n int) Team {
	team := id.Cell(start)
	if team == None {
		return None
	}
	for k := 1; k < n; k++ {
		if id.Cell(start+k*stride) != team {
			return None
		}
	}
	return team
}

// EnumerateMoves returns, in ascending cell order, the id reached by team
// marking each empty cell. A full board has no moves.
func EnumerateMoves(id ID, team Team, size int) []ID {
	numCells := size * size
	moves := make([]ID, 0, numCells)
	v := id.v
	for i := 0; i < numCells; i++ {
		var digit uint64
		v, digit = v.QuoRem64(3)
		if digit == 0 {
			moves = append(moves, id.with(i, team))
		}
	}
	return moves
}
