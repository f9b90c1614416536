package engine

// Simulate slides the player in dir until something stops it, applying tile
// side effects along the way. It returns false and leaves state untouched when
// the first cell in that direction is a hard obstacle. A true result always
// means the player moved.
//
// Each step of a slide: enter the next cell; a sticky cell ends the slide
// after this step; a trap just left becomes a wall; loose tiles next to the
// player erode; the slide stops if the following cell is a hard obstacle.
// Reaching the target ends the slide once the step's effects are applied.
func Simulate(state *PuzzleState, dir Direction) bool {
	next := state.Player.Add(dir)
	if blocked(state.Map, next) {
		return false
	}

	// The first step is unconditional so a legal slide always moves the
	// player, even when it starts on the target.
	for sliding := true; sliding; sliding = sliding && state.Player != state.Target {
		prev := state.Player
		state.Player = next

		if state.Map.At(state.Player) == Sticky {
			sliding = false
		}

		next = state.Player.Add(dir)

		// A trap fires once, when the player leaves it
		if state.Map.At(prev) == Trap {
			state.Map.Set(prev, Wall)
		}

		for _, d := range Directions {
			adjacent := state.Player.Add(d)
			if state.Map.InBounds(adjacent) && state.Map.At(adjacent) == Loose {
				state.Map.Set(adjacent, TileNone)
			}
		}

		// Checked after erosion: a loose tile removed above no longer blocks
		if blocked(state.Map, next) {
			sliding = false
		}
	}

	return true
}

// blocked reports whether pos cannot be entered. Cells outside the grid are
// treated like walls.
func blocked(grid Grid, pos Position) bool {
	if !grid.InBounds(pos) {
		return true
	}
	return grid.At(pos).IsHardObstacle()
}

// CanSlide reports whether a slide in dir would be legal without mutating state
func CanSlide(state *PuzzleState, dir Direction) bool {
	return !blocked(state.Map, state.Player.Add(dir))
}

// Replay applies dirs in order and returns how many slides were legal.
// Illegal slides are skipped, matching interactive play.
func Replay(state *PuzzleState, dirs []Direction) int {
	legal := 0
	for _, dir := range dirs {
		if Simulate(state, dir) {
			legal++
		}
	}
	return legal
}
