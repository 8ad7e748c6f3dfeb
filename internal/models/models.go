package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/chessbets/backend/internal/wager"
)

// PlayerProfile is the persisted per-player rating and risk-history record
type PlayerProfile struct {
	PlayerID         string        `db:"player_id" json:"player_id"`
	Rating           int           `db:"rating" json:"rating"`
	Games            int           `db:"games" json:"games"`
	Wins             int           `db:"wins" json:"wins"`
	IsProvisional    bool          `db:"is_provisional" json:"is_provisional"`
	ProvisionalGames int           `db:"provisional_games" json:"provisional_games"`
	MaxStake         int64         `db:"max_stake" json:"max_stake"`
	TotalStaked      int64         `db:"total_staked" json:"total_staked"`
	WeightedWinSum   int64         `db:"weighted_win_sum" json:"weighted_win_sum"`
	HighStakeGames   int           `db:"high_stake_games" json:"high_stake_games"`
	HighStakeWins    int           `db:"high_stake_wins" json:"high_stake_wins"`
	LowStakeGames    int           `db:"low_stake_games" json:"low_stake_games"`
	LowStakeWins     int           `db:"low_stake_wins" json:"low_stake_wins"`
	StakeHistory     pq.Int64Array `db:"stake_history" json:"stake_history"`
	WinHistory       pq.BoolArray  `db:"win_history" json:"win_history"`
	NextHistoryIndex int           `db:"next_history_index" json:"next_history_index"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// ToDomain converts the row into the core profile entity
func (p *PlayerProfile) ToDomain() *wager.Profile {
	d := &wager.Profile{
		Player:           p.PlayerID,
		Rating:           p.Rating,
		Games:            p.Games,
		Wins:             p.Wins,
		Provisional:      p.IsProvisional,
		ProvisionalGames: p.ProvisionalGames,
		MaxStake:         p.MaxStake,
		TotalStaked:      p.TotalStaked,
		WeightedWinSum:   p.WeightedWinSum,
		HighStakeGames:   p.HighStakeGames,
		HighStakeWins:    p.HighStakeWins,
		LowStakeGames:    p.LowStakeGames,
		LowStakeWins:     p.LowStakeWins,
		NextHistoryIndex: p.NextHistoryIndex,
		CreatedAt:        p.CreatedAt,
	}
	for i := 0; i < wager.StakeHistorySize && i < len(p.StakeHistory); i++ {
		d.StakeHistory[i] = p.StakeHistory[i]
	}
	for i := 0; i < wager.StakeHistorySize && i < len(p.WinHistory); i++ {
		d.WinHistory[i] = p.WinHistory[i]
	}
	return d
}

// ApplyDomain copies the mutated core entity back onto the row
func (p *PlayerProfile) ApplyDomain(d *wager.Profile) {
	p.Rating = d.Rating
	p.Games = d.Games
	p.Wins = d.Wins
	p.IsProvisional = d.Provisional
	p.ProvisionalGames = d.ProvisionalGames
	p.MaxStake = d.MaxStake
	p.TotalStaked = d.TotalStaked
	p.WeightedWinSum = d.WeightedWinSum
	p.HighStakeGames = d.HighStakeGames
	p.HighStakeWins = d.HighStakeWins
	p.LowStakeGames = d.LowStakeGames
	p.LowStakeWins = d.LowStakeWins
	p.NextHistoryIndex = d.NextHistoryIndex
	p.StakeHistory = append(p.StakeHistory[:0], d.StakeHistory[:]...)
	p.WinHistory = append(p.WinHistory[:0], d.WinHistory[:]...)
}

// EmptyStakeHistory returns a zeroed ring buffer for a fresh profile row
func EmptyStakeHistory() pq.Int64Array {
	return make(pq.Int64Array, wager.StakeHistorySize)
}

// EmptyWinHistory returns a zeroed ring buffer for a fresh profile row
func EmptyWinHistory() pq.BoolArray {
	return make(pq.BoolArray, wager.StakeHistorySize)
}

// Match is the persisted escrow+game unit
type Match struct {
	ID              int            `db:"id" json:"id"`
	MatchToken      string         `db:"match_token" json:"match_token"`
	PlayerOne       string         `db:"player_one" json:"player_one"`
	PlayerTwo       string         `db:"player_two" json:"player_two"`
	Stake           int64          `db:"stake" json:"stake"`
	Winner          sql.NullString `db:"winner" json:"winner,omitempty"`
	IsGameOver      bool           `db:"is_game_over" json:"is_game_over"`
	IsSettled       bool           `db:"is_settled" json:"is_settled"`
	TimeControl     int16          `db:"time_control" json:"time_control"`
	ClockOneMillis  int64          `db:"clock_one_ms" json:"clock_one_ms"`
	ClockTwoMillis  int64          `db:"clock_two_ms" json:"clock_two_ms"`
	PlayerOneTurn   bool           `db:"player_one_turn" json:"player_one_turn"`
	Moves           pq.StringArray `db:"moves" json:"moves"`
	Version         int64          `db:"version" json:"version"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ConfirmDeadline time.Time      `db:"confirm_deadline" json:"confirm_deadline"`
	ConfirmedAt     sql.NullTime   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	LastActionAt    time.Time      `db:"last_action_at" json:"last_action_at"`
}

// ToDomain converts the row into the core match entity
func (m *Match) ToDomain() *wager.Match {
	d := &wager.Match{
		PlayerOne:       m.PlayerOne,
		PlayerTwo:       m.PlayerTwo,
		Stake:           m.Stake,
		Winner:          wager.DrawWinner,
		GameOver:        m.IsGameOver,
		Settled:         m.IsSettled,
		CreatedAt:       m.CreatedAt,
		ConfirmDeadline: m.ConfirmDeadline,
		LastActionAt:    m.LastActionAt,
		TimeControl:     wager.TimeControl(m.TimeControl),
		ClockOneMillis:  m.ClockOneMillis,
		ClockTwoMillis:  m.ClockTwoMillis,
		PlayerOneTurn:   m.PlayerOneTurn,
		Moves:           append([]string(nil), m.Moves...),
		Version:         m.Version,
	}
	if m.Winner.Valid {
		d.Winner = m.Winner.String
	}
	if m.ConfirmedAt.Valid {
		d.ConfirmedAt = m.ConfirmedAt.Time
	}
	return d
}

// ApplyDomain copies the mutated core entity back onto the row. The winner
// column is NULL until the game is over; a decided draw is stored as an
// empty string so it stays distinguishable from an undecided game.
func (m *Match) ApplyDomain(d *wager.Match) {
	m.Winner = sql.NullString{String: d.Winner, Valid: d.GameOver}
	m.IsGameOver = d.GameOver
	m.IsSettled = d.Settled
	m.ClockOneMillis = d.ClockOneMillis
	m.ClockTwoMillis = d.ClockTwoMillis
	m.PlayerOneTurn = d.PlayerOneTurn
	m.Moves = append(m.Moves[:0], d.Moves...)
	m.Version = d.Version
	m.LastActionAt = d.LastActionAt
	if !d.ConfirmedAt.IsZero() {
		m.ConfirmedAt = sql.NullTime{Time: d.ConfirmedAt, Valid: true}
	}
}

// Account is one balance-bearing ledger account
type Account struct {
	ID            int            `db:"id" json:"id"`
	AccountType   string         `db:"account_type" json:"account_type"`
	OwnerPlayerID sql.NullString `db:"owner_player_id" json:"owner_player_id,omitempty"`
	Balance       int64          `db:"balance" json:"balance"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// AccountTransaction is one double-entry ledger row
type AccountTransaction struct {
	ID              int           `db:"id" json:"id"`
	DebitAccountID  int           `db:"debit_account_id" json:"debit_account_id"`
	CreditAccountID int           `db:"credit_account_id" json:"credit_account_id"`
	Amount          int64         `db:"amount" json:"amount"`
	ReferenceType   string        `db:"reference_type" json:"reference_type"`
	ReferenceID     sql.NullInt64 `db:"reference_id" json:"reference_id,omitempty"`
	Description     string        `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// EscrowLedger records stake-in and payout entries per match
type EscrowLedger struct {
	ID           int       `db:"id" json:"id"`
	MatchID      int       `db:"match_id" json:"match_id"`
	EntryType    string    `db:"entry_type" json:"entry_type"`
	PlayerID     string    `db:"player_id" json:"player_id"`
	Amount       int64     `db:"amount" json:"amount"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	Description  string    `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AdminAccount holds a privileged operator credential
type AdminAccount struct {
	AdminID     string         `db:"admin_id" json:"admin_id"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// RuntimeConfig is a DB-backed configuration override
type RuntimeConfig struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	ValueType   string    `db:"value_type" json:"value_type"`
	Description string    `db:"description" json:"description"`
	UpdatedBy   string    `db:"updated_by" json:"updated_by"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AdminAudit records one privileged action
type AdminAudit struct {
	ID        int       `db:"id" json:"id"`
	AdminID   string    `db:"admin_id" json:"admin_id"`
	IP        string    `db:"ip" json:"ip"`
	Route     string    `db:"route" json:"route"`
	Action    string    `db:"action" json:"action"`
	Details   []byte    `db:"details" json:"details"`
	Success   bool      `db:"success" json:"success"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
