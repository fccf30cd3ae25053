// Package taxi is the Taxi gridworld: a 5x5 map with four landmarks, one
// passenger and one destination. It provides the environment, a perceiver
// mapping its integer observations to symbols, the PickUp/DropOff operators
// and the skills that execute them.
package taxi

import (
	"fmt"
	"math/rand/v2"
)

// Map is the grid. Walls are '|' characters between cells.
var Map = [...]string{
	"+---------+",
	"|R: | : :G|",
	"| : | : : |",
	"| : : : : |",
	"| | : | : |",
	"|Y| : |B: |",
	"+---------+",
}

const (
	Rows = 5
	Cols = 5
	// InTaxiIndex is the passenger location index meaning "in the taxi".
	InTaxiIndex = len(Locations)
	// NumStates is the number of distinct observations.
	NumStates = Rows * Cols * (len(Locations) + 1) * len(Locations)
)

const (
	RewardStep    = -1
	RewardDeliver = 20
	RewardIllegal = -10
)

// Pos is a cell.
type Pos struct {
	Row, Col int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Locations are the landmarks R, G, Y and B, indexed as in observations.
var Locations = [...]Pos{{0, 0}, {0, 4}, {4, 0}, {4, 3}}

// LocationNames labels Locations for rendering.
var LocationNames = [...]byte{'R', 'G', 'Y', 'B'}

// Action is a low-level taxi action.
type Action int

const (
	South Action = iota
	North
	East
	West
	Pickup
	Dropoff
)

var actionNames = [...]string{"south", "north", "east", "west", "pickup", "dropoff"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Moves are the navigation actions, in a fixed order.
var Moves = [...]Action{South, North, East, West}

// Move returns the cell reached by a navigation action from p. Moves into the
// border or through a wall leave p unchanged.
func Move(p Pos, a Action) Pos {
	switch a {
	case South:
		if p.Row < Rows-1 {
			p.Row++
		}
	case North:
		if p.Row > 0 {
			p.Row--
		}
	case East:
		if p.Col < Cols-1 && Map[1+p.Row][2*p.Col+2] != '|' {
			p.Col++
		}
	case West:
		if p.Col > 0 && Map[1+p.Row][2*p.Col] != '|' {
			p.Col--
		}
	}
	return p
}

// State is the full environment state.
type State struct {
	Taxi Pos
	// Passenger is an index into Locations, or InTaxiIndex.
	Passenger int
	// Destination is an index into Locations.
	Destination int
}

// Encode returns the integer observation for s.
func (s State) Encode() int {
	return ((s.Taxi.Row*Cols+s.Taxi.Col)*(len(Locations)+1)+s.Passenger)*len(Locations) + s.Destination
}

// Decode is the inverse of State.Encode.
func Decode(obs int) (State, error) {
	if obs < 0 || obs >= NumStates {
		return State{}, fmt.Errorf("taxi: observation %d out of range", obs)
	}
	var s State
	s.Destination = obs % len(Locations)
	obs /= len(Locations)
	s.Passenger = obs % (len(Locations) + 1)
	obs /= len(Locations) + 1
	s.Taxi.Col = obs % Cols
	s.Taxi.Row = obs / Cols
	return s, nil
}

// Env simulates Taxi. An episode ends when the passenger is delivered.
type Env struct {
	rng   *rand.Rand
	state State
	done  bool
	steps int
}

// NewEnv returns an environment whose resets are drawn from seed.
func NewEnv(seed uint64) *Env {
	return &Env{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), done: true}
}

// State returns the current state.
func (e *Env) State() State { return e.state }

// Steps returns the number of steps since the last reset.
func (e *Env) Steps() int { return e.steps }

// Reset starts an episode with the taxi anywhere, and the passenger and
// destination at distinct landmarks.
func (e *Env) Reset() (int, error) {
	e.state = State{
		Taxi:      Pos{Row: e.rng.IntN(Rows), Col: e.rng.IntN(Cols)},
		Passenger: e.rng.IntN(len(Locations)),
	}
	e.state.Destination = e.rng.IntN(len(Locations) - 1)
	if e.state.Destination >= e.state.Passenger {
		e.state.Destination++
	}
	e.done = false
	e.steps = 0
	return e.state.Encode(), nil
}

// SetState overwrites the state and starts a new episode from it.
func (e *Env) SetState(s State) (int, error) {
	if s.Passenger < 0 || s.Passenger > InTaxiIndex || s.Destination < 0 || s.Destination >= len(Locations) ||
		s.Taxi.Row < 0 || s.Taxi.Row >= Rows || s.Taxi.Col < 0 || s.Taxi.Col >= Cols {
		return 0, fmt.Errorf("taxi: invalid state %+v", s)
	}
	e.state = s
	e.done = false
	e.steps = 0
	return s.Encode(), nil
}

// Step applies a and returns the observation, the reward, and whether the
// passenger has been delivered.
func (e *Env) Step(a Action) (int, float64, bool, error) {
	if e.done {
		return e.state.Encode(), 0, true, fmt.Errorf("taxi: step after episode end")
	}
	reward := RewardStep
	switch a {
	case South, North, East, West:
		e.state.Taxi = Move(e.state.Taxi, a)
	case Pickup:
		if e.state.Passenger < InTaxiIndex && Locations[e.state.Passenger] == e.state.Taxi {
			e.state.Passenger = InTaxiIndex
		} else {
			reward = RewardIllegal
		}
	case Dropoff:
		switch at := landmarkAt(e.state.Taxi); {
		case e.state.Passenger == InTaxiIndex && at == e.state.Destination:
			e.state.Passenger = at
			e.done = true
			reward = RewardDeliver
		case e.state.Passenger == InTaxiIndex && at >= 0:
			e.state.Passenger = at
		default:
			reward = RewardIllegal
		}
	default:
		return e.state.Encode(), 0, false, fmt.Errorf("taxi: unknown action %d", int(a))
	}
	e.steps++
	return e.state.Encode(), float64(reward), e.done, nil
}

// landmarkAt returns the index of the landmark at p, or -1.
func landmarkAt(p Pos) int {
	for i, l := range Locations {
		if l == p {
			return i
		}
	}
	return -1
}
