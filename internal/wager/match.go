package wager

import "time"

// DrawWinner is the sentinel winner identity recorded for drawn games. It is
// also what Match.Winner holds before any outcome is declared.
const DrawWinner = ""

// Result classifies how a game ended.
type Result uint8

const (
	ResultMate Result = iota
	ResultResign
	ResultTimeout
	ResultDisconnect
	ResultDraw
)

// ParseResult maps the external result string to a Result.
func ParseResult(s string) (Result, error) {
	switch s {
	case "mate":
		return ResultMate, nil
	case "resign":
		return ResultResign, nil
	case "timeout":
		return ResultTimeout, nil
	case "disconnect":
		return ResultDisconnect, nil
	case "draw":
		return ResultDraw, nil
	default:
		return 0, ErrInvalidResult
	}
}

func (r Result) String() string {
	switch r {
	case ResultMate:
		return "mate"
	case ResultResign:
		return "resign"
	case ResultTimeout:
		return "timeout"
	case ResultDisconnect:
		return "disconnect"
	case ResultDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Match is one escrow-backed contest between two players. All mutation goes
// through the methods below; the storage layer persists the whole struct
// inside a single transaction so an operation either fully applies or not
// at all.
type Match struct {
	PlayerOne string
	PlayerTwo string

	// Stake is the per-player stake in base currency units. The pooled
	// escrow holds 2*Stake once confirmed.
	Stake int64

	// Winner stays DrawWinner until an outcome is declared. For drawn games
	// it remains DrawWinner with GameOver set.
	Winner   string
	GameOver bool
	Settled  bool

	CreatedAt       time.Time
	ConfirmDeadline time.Time
	ConfirmedAt     time.Time // zero until confirmed
	LastActionAt    time.Time

	TimeControl    TimeControl
	ClockOneMillis int64
	ClockTwoMillis int64
	PlayerOneTurn  bool

	Moves   []string
	Version int64
}

// NewMatch validates the pairing and builds a match in the Created state with
// clocks loaded from the time control table. Stake caps and balance checks
// are the caller's responsibility (they need both player profiles).
func NewMatch(playerOne, playerTwo string, stake int64, tc TimeControl, now time.Time, confirmWindow time.Duration) (*Match, error) {
	if playerOne == playerTwo {
		return nil, ErrSameParticipant
	}
	clock, err := tc.InitialClockMillis()
	if err != nil {
		return nil, err
	}
	if confirmWindow <= 0 {
		confirmWindow = DefaultConfirmationWindow
	}
	return &Match{
		PlayerOne:       playerOne,
		PlayerTwo:       playerTwo,
		Stake:           stake,
		Winner:          DrawWinner,
		CreatedAt:       now,
		ConfirmDeadline: now.Add(confirmWindow),
		LastActionAt:    now,
		TimeControl:     tc,
		ClockOneMillis:  clock,
		ClockTwoMillis:  clock,
		PlayerOneTurn:   true,
	}, nil
}

// Confirmed reports whether the escrow has been funded.
func (m *Match) Confirmed() bool { return !m.ConfirmedAt.IsZero() }

// IsParticipant reports whether player is one of the two match participants.
func (m *Match) IsParticipant(player string) bool {
	return player == m.PlayerOne || player == m.PlayerTwo
}

// Opponent returns the other participant, or DrawWinner if player is not in
// the match.
func (m *Match) Opponent(player string) string {
	switch player {
	case m.PlayerOne:
		return m.PlayerTwo
	case m.PlayerTwo:
		return m.PlayerOne
	default:
		return DrawWinner
	}
}

// Confirm marks the escrow as funded and starts the clocks. It is valid at
// most once and only inside the confirmation window. A match whose window
// has expired stays permanently unconfirmed; since stakes are only pulled at
// confirmation, no funds are stranded.
func (m *Match) Confirm(now time.Time) error {
	if m.Confirmed() {
		return ErrAlreadyConfirmed
	}
	if now.After(m.ConfirmDeadline) {
		return ErrConfirmationExpired
	}
	m.ConfirmedAt = now
	m.LastActionAt = now
	m.Version++
	return nil
}

// MoveResult describes what a SubmitMove call did.
type MoveResult struct {
	// TimedOut is set when the mover's clock expired; the move was not
	// recorded and Winner holds the opponent.
	TimedOut bool
	Winner   string
}

// SubmitMove debits the mover's clock by the elapsed time since the last
// action and records the move. Moves are opaque SAN strings; legality is not
// checked here. A clock reaching zero ends the game in the opponent's favour
// without recording the move.
func (m *Match) SubmitMove(mover, san string, now time.Time) (MoveResult, error) {
	if m.GameOver {
		return MoveResult{}, ErrGameAlreadyOver
	}
	if !m.Confirmed() {
		return MoveResult{}, ErrNotConfirmed
	}
	moverIsOne := mover == m.PlayerOne
	moverIsTwo := mover == m.PlayerTwo
	if !(moverIsOne && m.PlayerOneTurn) && !(moverIsTwo && !m.PlayerOneTurn) {
		return MoveResult{}, ErrNotYourTurn
	}

	elapsed := now.Sub(m.LastActionAt).Milliseconds()
	if elapsed < 0 {
		// Clock went backwards relative to the recorded last action.
		return MoveResult{}, ErrArithmeticOverflow
	}

	remaining := m.ClockOneMillis
	if moverIsTwo {
		remaining = m.ClockTwoMillis
	}
	remaining, err := checkedSub64(remaining, elapsed)
	if err != nil {
		return MoveResult{}, err
	}
	if remaining <= 0 {
		remaining = 0
		m.setClock(moverIsOne, remaining)
		m.GameOver = true
		m.Winner = m.Opponent(mover)
		m.Version++
		return MoveResult{TimedOut: true, Winner: m.Winner}, nil
	}

	m.setClock(moverIsOne, remaining)
	m.Moves = append(m.Moves, san)
	m.PlayerOneTurn = !m.PlayerOneTurn
	m.LastActionAt = now
	m.Version++
	return MoveResult{}, nil
}

func (m *Match) setClock(playerOne bool, millis int64) {
	if playerOne {
		m.ClockOneMillis = millis
	} else {
		m.ClockTwoMillis = millis
	}
}

// SubmitOutcome ends the game with a self-reported result. The reporting
// participant is trusted: a non-draw result names the caller as winner and
// there is no dispute window. Only the first report is accepted; a timeout
// that already ended the game wins over any later report.
func (m *Match) SubmitOutcome(caller string, result Result) error {
	if m.GameOver {
		return ErrGameAlreadyOver
	}
	if !m.Confirmed() {
		return ErrNotConfirmed
	}
	if !m.IsParticipant(caller) {
		return ErrNotParticipant
	}
	if result > ResultDraw {
		return ErrInvalidResult
	}
	m.GameOver = true
	if result == ResultDraw {
		m.Winner = DrawWinner
	} else {
		m.Winner = caller
	}
	m.Version++
	return nil
}
