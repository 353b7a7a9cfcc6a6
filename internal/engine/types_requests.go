package engine

// ActivateByNameRequest represents a request to activate a layer by name.
type ActivateByNameRequest struct {
	// Target is matched case-insensitively against layer names
	Target string
}

// ActivateByIndexRequest represents a request to activate the nth layer.
type ActivateByIndexRequest struct {
	// Index addresses traversal order; negative values count from the end
	Index int
}

// Direction is a one-step move in stacking order.
type Direction int

const (
	// Up moves toward the top of the stack.
	Up Direction = -1
	// Down moves toward the bottom of the stack.
	Down Direction = 1
)

// String returns "up" or "down".
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "invalid"
	}
}

// MoveRequest represents a request to move the active layer.
type MoveRequest struct {
	// Delta is Up or Down
	Delta Direction
}
