package game

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/chessbets/backend/internal/accounts"
	"github.com/chessbets/backend/internal/config"
	"github.com/chessbets/backend/internal/events"
	"github.com/chessbets/backend/internal/models"
	"github.com/chessbets/backend/internal/wager"
)

// MatchManager executes every match operation as one atomic database
// transaction: the match row (and any profile rows) are locked FOR UPDATE,
// the pure core in internal/wager computes the transition, and the result is
// persisted or the whole transaction rolls back. No two operations touching
// the same match or profile interleave their effects.
type MatchManager struct {
	db     *sqlx.DB
	rdb    *redis.Client
	config *config.Config
	events *events.Publisher
}

// Global match manager instance
var Manager *MatchManager

// InitializeManager initializes the global match manager with DB, Redis and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewMatchManager(db, rdb, cfg)
}

func NewMatchManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *MatchManager {
	return &MatchManager{
		db:     db,
		rdb:    rdb,
		config: cfg,
		events: events.NewPublisher(rdb),
	}
}

// escrow ledger entry types
const (
	escrowStakeIn = "STAKE_IN"
	escrowPayout  = "PAYOUT"
)

// escrowNet returns the funds one match still holds in escrow: stake-in
// entries minus payouts already made. Unknown entry types are ignored.
func escrowNet(entries []models.EscrowLedger) int64 {
	var net int64
	for _, e := range entries {
		switch e.EntryType {
		case escrowStakeIn:
			net += e.Amount
		case escrowPayout:
			net -= e.Amount
		}
	}
	return net
}

// generateMatchToken returns a short random hex token identifying a match externally
func generateMatchToken() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("mt_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

const matchColumns = `id, match_token, player_one, player_two, stake, winner, is_game_over, is_settled,
	time_control, clock_one_ms, clock_two_ms, player_one_turn, moves, version,
	created_at, confirm_deadline, confirmed_at, last_action_at`

const profileColumns = `player_id, rating, games, wins, is_provisional, provisional_games,
	max_stake, total_staked, weighted_win_sum,
	high_stake_games, high_stake_wins, low_stake_games, low_stake_wins,
	stake_history, win_history, next_history_index, created_at, updated_at`

func getMatchForUpdate(tx *sqlx.Tx, token string) (*models.Match, error) {
	var m models.Match
	if err := tx.Get(&m, `SELECT `+matchColumns+` FROM matches WHERE match_token=$1 FOR UPDATE`, token); err != nil {
		return nil, fmt.Errorf("load match %s: %w", token, err)
	}
	return &m, nil
}

func saveMatch(tx *sqlx.Tx, m *models.Match) error {
	_, err := tx.Exec(`UPDATE matches SET
			winner=$1, is_game_over=$2, is_settled=$3,
			clock_one_ms=$4, clock_two_ms=$5, player_one_turn=$6,
			moves=$7, version=$8, confirmed_at=$9, last_action_at=$10
		WHERE id=$11`,
		m.Winner, m.IsGameOver, m.IsSettled,
		m.ClockOneMillis, m.ClockTwoMillis, m.PlayerOneTurn,
		m.Moves, m.Version, m.ConfirmedAt, m.LastActionAt, m.ID)
	if err != nil {
		return fmt.Errorf("save match %s: %w", m.MatchToken, err)
	}
	return nil
}

func getProfileForUpdate(tx *sqlx.Tx, playerID string) (*models.PlayerProfile, error) {
	var p models.PlayerProfile
	if err := tx.Get(&p, `SELECT `+profileColumns+` FROM player_profiles WHERE player_id=$1 FOR UPDATE`, playerID); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", playerID, err)
	}
	return &p, nil
}

func saveProfile(tx *sqlx.Tx, p *models.PlayerProfile) error {
	_, err := tx.Exec(`UPDATE player_profiles SET
			rating=$1, games=$2, wins=$3, is_provisional=$4, provisional_games=$5,
			max_stake=$6, total_staked=$7, weighted_win_sum=$8,
			high_stake_games=$9, high_stake_wins=$10, low_stake_games=$11, low_stake_wins=$12,
			stake_history=$13, win_history=$14, next_history_index=$15, updated_at=NOW()
		WHERE player_id=$16`,
		p.Rating, p.Games, p.Wins, p.IsProvisional, p.ProvisionalGames,
		p.MaxStake, p.TotalStaked, p.WeightedWinSum,
		p.HighStakeGames, p.HighStakeWins, p.LowStakeGames, p.LowStakeWins,
		p.StakeHistory, p.WinHistory, p.NextHistoryIndex, p.PlayerID)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.PlayerID, err)
	}
	return nil
}

// InitializeProfile creates a fresh provisional profile and a wallet account
// for the player. Re-initialization is rejected.
func (mm *MatchManager) InitializeProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	d := wager.NewProfile(playerID, time.Now().UTC())

	res, err := mm.db.Exec(`INSERT INTO player_profiles
			(player_id, rating, is_provisional, max_stake, stake_history, win_history, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $4, $5, $6, NOW())
		ON CONFLICT (player_id) DO NOTHING`,
		playerID, d.Rating, d.MaxStake,
		models.EmptyStakeHistory(), models.EmptyWinHistory(), d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, wager.ErrAlreadyInitialized
	}

	if _, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountPlayerWallet, playerID); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	log.Printf("[PROFILE] Initialized profile for player %s (rating=%d)", playerID, d.Rating)
	return mm.GetProfile(playerID)
}

// GetProfile loads a profile without locking.
func (mm *MatchManager) GetProfile(playerID string) (*models.PlayerProfile, error) {
	var p models.PlayerProfile
	if err := mm.db.Get(&p, `SELECT `+profileColumns+` FROM player_profiles WHERE player_id=$1`, playerID); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", playerID, err)
	}
	return &p, nil
}

// GetMatch loads a match without locking.
func (mm *MatchManager) GetMatch(token string) (*models.Match, error) {
	var m models.Match
	if err := mm.db.Get(&m, `SELECT `+matchColumns+` FROM matches WHERE match_token=$1`, token); err != nil {
		return nil, fmt.Errorf("load match %s: %w", token, err)
	}
	return &m, nil
}

// CreateMatch gates the stake against both players' caps and betting
// patterns, verifies wallet balances, and inserts the match in the Created
// state with clocks loaded from the time-control table. No funds move yet.
func (mm *MatchManager) CreateMatch(ctx context.Context, playerOne, playerTwo string, stake int64, timeControl string) (*models.Match, error) {
	tc, err := wager.ParseTimeControl(timeControl)
	if err != nil {
		return nil, err
	}
	if stake < mm.config.MinStakeAmount {
		return nil, fmt.Errorf("stake below minimum %d: %w", mm.config.MinStakeAmount, wager.ErrStakeCapExceeded)
	}

	now := time.Now().UTC()
	domain, err := wager.NewMatch(playerOne, playerTwo, stake, tc, now, mm.config.ConfirmationWindow())
	if err != nil {
		return nil, err
	}

	tx, err := mm.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	profOne, err := getProfileForUpdate(tx, playerOne)
	if err != nil {
		return nil, err
	}
	profTwo, err := getProfileForUpdate(tx, playerTwo)
	if err != nil {
		return nil, err
	}

	for _, prof := range []*models.PlayerProfile{profOne, profTwo} {
		d := prof.ToDomain()

		var baseCap int64 = wager.PlayerStakeCap
		if d.Provisional {
			baseCap = wager.ProvisionalStakeCap
		}
		if stake > baseCap {
			return nil, fmt.Errorf("player %s: %w", d.Player, wager.ErrStakeCapExceeded)
		}
		if stake > wager.MaxStake(d, now) {
			return nil, fmt.Errorf("player %s: %w", d.Player, wager.ErrStakeExceedsLimit)
		}
		if !wager.ConsistentStake(d, stake) {
			return nil, fmt.Errorf("player %s: %w", d.Player, wager.ErrSuspiciousStakePattern)
		}

		wallet, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountPlayerWallet, d.Player)
		if err != nil {
			return nil, fmt.Errorf("wallet for %s: %w", d.Player, err)
		}
		if wallet.Balance < stake {
			return nil, fmt.Errorf("player %s: %w", d.Player, wager.ErrInsufficientFunds)
		}
	}

	token := generateMatchToken()
	var id int
	err = tx.QueryRow(`INSERT INTO matches
			(match_token, player_one, player_two, stake, time_control,
			 clock_one_ms, clock_two_ms, player_one_turn, moves, version,
			 created_at, confirm_deadline, last_action_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,'{}',0,$8,$9,$10)
		RETURNING id`,
		token, playerOne, playerTwo, stake, int16(tc),
		domain.ClockOneMillis, domain.ClockTwoMillis,
		domain.CreatedAt, domain.ConfirmDeadline, domain.LastActionAt).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[MATCH] Created match %s: %s vs %s stake=%d tc=%s", token, playerOne, playerTwo, stake, tc)
	mm.events.MatchCreated(ctx, token, playerOne, playerTwo, stake)

	return mm.GetMatch(token)
}

// ConfirmMatch moves the stake from both players' wallets into escrow and
// starts the clocks. Valid at most once, only inside the confirmation
// window; both transfers and the state change commit together.
func (mm *MatchManager) ConfirmMatch(ctx context.Context, token string) error {
	now := time.Now().UTC()

	tx, err := mm.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row, err := getMatchForUpdate(tx, token)
	if err != nil {
		return err
	}
	domain := row.ToDomain()
	if err := domain.Confirm(now); err != nil {
		return err
	}

	escrowAcc, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountEscrow, "")
	if err != nil {
		return fmt.Errorf("escrow account: %w", err)
	}
	ref := sql.NullInt64{Int64: int64(row.ID), Valid: true}

	for _, player := range []string{row.PlayerOne, row.PlayerTwo} {
		wallet, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountPlayerWallet, player)
		if err != nil {
			return fmt.Errorf("wallet for %s: %w", player, err)
		}
		if err := accounts.Transfer(tx, wallet.ID, escrowAcc.ID, row.Stake, "MATCH", ref, "Stake escrow"); err != nil {
			return fmt.Errorf("escrow stake for %s: %w", player, err)
		}
		balance, err := accounts.GetBalance(tx, escrowAcc.ID)
		if err != nil {
			return fmt.Errorf("escrow balance: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO escrow_ledger (match_id, entry_type, player_id, amount, balance_after, description, created_at)
				VALUES ($1,$2,$3,$4,$5,'Stake escrowed',NOW())`,
			row.ID, escrowStakeIn, player, row.Stake, balance); err != nil {
			return fmt.Errorf("escrow ledger: %w", err)
		}
	}

	row.ApplyDomain(domain)
	if err := saveMatch(tx, row); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Printf("[MATCH] Confirmed match %s: %d escrowed from each player", token, row.Stake)
	mm.events.EscrowConfirmed(ctx, token, row.Stake)
	return nil
}

// SubmitMove applies one move through the core state machine. A move that
// empties the mover's clock ends the game in the opponent's favour and is
// not recorded.
func (mm *MatchManager) SubmitMove(ctx context.Context, token, mover, san string) (*models.Match, error) {
	now := time.Now().UTC()

	tx, err := mm.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row, err := getMatchForUpdate(tx, token)
	if err != nil {
		return nil, err
	}
	domain := row.ToDomain()
	res, err := domain.SubmitMove(mover, san, now)
	if err != nil {
		return nil, err
	}

	row.ApplyDomain(domain)
	if err := saveMatch(tx, row); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if res.TimedOut {
		log.Printf("[MATCH] Match %s: %s flagged on time, %s wins", token, mover, res.Winner)
		mm.events.GameOver(ctx, token, wager.ResultTimeout.String(), res.Winner)
	}
	return row, nil
}

// SubmitOutcome records a self-reported terminal result. The reporting
// participant is trusted; only the first report is accepted.
func (mm *MatchManager) SubmitOutcome(ctx context.Context, token, caller, result string) (*models.Match, error) {
	r, err := wager.ParseResult(result)
	if err != nil {
		return nil, err
	}

	tx, err := mm.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row, err := getMatchForUpdate(tx, token)
	if err != nil {
		return nil, err
	}
	domain := row.ToDomain()
	if err := domain.SubmitOutcome(caller, r); err != nil {
		return nil, err
	}

	row.ApplyDomain(domain)
	if err := saveMatch(tx, row); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[MATCH] Match %s over: result=%s winner=%q", token, r, domain.Winner)
	mm.events.GameOver(ctx, token, r.String(), domain.Winner)
	return row, nil
}

// SettleMatch partitions the pooled stake and pays every leg, marks the
// match settled and runs the rating engine over both profiles inside one
// transaction, so a failed leg leaves no partial payout. whiteOwner and
// blackOwner are the opening royalty recipients; empty values fall back to
// the configured royalty accounts.
func (mm *MatchManager) SettleMatch(ctx context.Context, token, whiteOwner, blackOwner string) (*wager.Settlement, error) {
	now := time.Now().UTC()

	payees := wager.Payees{
		Platform:     mm.config.PlatformPayeeID,
		WhiteRoyalty: whiteOwner,
		BlackRoyalty: blackOwner,
	}
	if payees.WhiteRoyalty == "" {
		payees.WhiteRoyalty = mm.config.WhiteRoyaltyFallback
	}
	if payees.BlackRoyalty == "" {
		payees.BlackRoyalty = mm.config.BlackRoyaltyFallback
	}

	tx, err := mm.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row, err := getMatchForUpdate(tx, token)
	if err != nil {
		return nil, err
	}
	domain := row.ToDomain()

	settlement, err := wager.ComputeSettlement(domain, payees)
	if err != nil {
		return nil, err
	}

	escrowAcc, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountEscrow, "")
	if err != nil {
		return nil, fmt.Errorf("escrow account: %w", err)
	}

	// The escrow account is shared across matches, so its balance cannot
	// prove this match is funded. Net this match's own ledger entries
	// instead.
	var entries []models.EscrowLedger
	if err := tx.Select(&entries, `SELECT id, match_id, entry_type, player_id, amount, balance_after, description, created_at
			FROM escrow_ledger WHERE match_id=$1 ORDER BY id`, row.ID); err != nil {
		return nil, fmt.Errorf("escrow ledger for match %s: %w", token, err)
	}
	if net := escrowNet(entries); net < settlement.Total {
		return nil, fmt.Errorf("match escrow holds %d, need %d: %w", net, settlement.Total, wager.ErrInsufficientEscrow)
	}

	ref := sql.NullInt64{Int64: int64(row.ID), Valid: true}
	for _, transfer := range settlement.Transfers {
		dest, err := mm.payeeAccount(domain, payees, transfer.To)
		if err != nil {
			return nil, err
		}
		if err := accounts.Transfer(tx, escrowAcc.ID, dest.ID, transfer.Amount, "MATCH", ref, transfer.Memo); err != nil {
			return nil, fmt.Errorf("transfer to %s: %w", transfer.To, err)
		}
		after, err := accounts.GetBalance(tx, escrowAcc.ID)
		if err != nil {
			return nil, fmt.Errorf("escrow balance: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO escrow_ledger (match_id, entry_type, player_id, amount, balance_after, description, created_at)
				VALUES ($1,$2,$3,$4,$5,$6,NOW())`,
			row.ID, escrowPayout, transfer.To, transfer.Amount, after, transfer.Memo); err != nil {
			return nil, fmt.Errorf("escrow ledger: %w", err)
		}
	}

	domain.Settled = true
	row.ApplyDomain(domain)
	if err := saveMatch(tx, row); err != nil {
		return nil, err
	}

	// Rating update runs inside the same atomic step; its one-shot guard is
	// the settled flag just written above.
	profOne, err := getProfileForUpdate(tx, row.PlayerOne)
	if err != nil {
		return nil, err
	}
	profTwo, err := getProfileForUpdate(tx, row.PlayerTwo)
	if err != nil {
		return nil, err
	}
	dOne := profOne.ToDomain()
	dTwo := profTwo.ToDomain()
	change, err := wager.UpdateRatings(dOne, dTwo, domain.Winner, domain.Stake, now)
	if err != nil {
		return nil, err
	}
	profOne.ApplyDomain(dOne)
	profTwo.ApplyDomain(dTwo)
	if err := saveProfile(tx, profOne); err != nil {
		return nil, err
	}
	if err := saveProfile(tx, profTwo); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[SETTLE] Match %s settled: total=%d winner_share=%d platform=%d royalty_each=%d",
		token, settlement.Total, settlement.WinnerShare, settlement.PlatformShare, settlement.RoyaltyEach)
	log.Printf("[ELO] Match %s ratings: %s %d (%+d), %s %d (%+d)",
		token, row.PlayerOne, dOne.Rating, change.One, row.PlayerTwo, dTwo.Rating, change.Two)

	mm.events.MatchSettled(ctx, token, settlement.Total, settlement.WinnerShare, settlement.PlatformShare, settlement.RoyaltyEach)
	mm.events.RatingsUpdated(ctx, token, row.PlayerOne, row.PlayerTwo, dOne.Rating, dTwo.Rating, change.One, change.Two)

	return settlement, nil
}

// payeeAccount resolves a settlement recipient identity to its ledger
// account: participants collect into winnings accounts, the platform into
// the system rake account, royalty recipients into per-owner royalty
// accounts.
func (mm *MatchManager) payeeAccount(m *wager.Match, payees wager.Payees, to string) (*models.Account, error) {
	switch {
	case m.IsParticipant(to):
		return accounts.GetOrCreateAccount(mm.db, accounts.AccountPlayerWinnings, to)
	case to == payees.Platform:
		return accounts.GetOrCreateAccount(mm.db, accounts.AccountPlatform, "")
	case to == payees.WhiteRoyalty || to == payees.BlackRoyalty:
		return accounts.GetOrCreateAccount(mm.db, accounts.AccountRoyalty, to)
	default:
		return nil, fmt.Errorf("payee %s: %w", to, wager.ErrInvalidWinner)
	}
}

// CreditWallet tops up a player wallet. Development/testing helper exposed
// only through the authenticated admin surface; production deposits come
// from external wallet tooling.
func (mm *MatchManager) CreditWallet(ctx context.Context, playerID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive")
	}
	wallet, err := accounts.GetOrCreateAccount(mm.db, accounts.AccountPlayerWallet, playerID)
	if err != nil {
		return 0, err
	}

	tx, err := mm.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE accounts SET balance = balance + $1, updated_at=NOW() WHERE id=$2`, amount, wallet.ID); err != nil {
		return 0, fmt.Errorf("credit wallet: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO account_transactions (debit_account_id, credit_account_id, amount, reference_type, description, created_at)
			VALUES ($1,$1,$2,'DEPOSIT','Admin wallet credit',NOW())`, wallet.ID, amount); err != nil {
		return 0, fmt.Errorf("record credit: %w", err)
	}
	balance, err := accounts.GetBalance(tx, wallet.ID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[ACCT] Credited %d to wallet of %s (balance=%d)", amount, playerID, balance)
	return balance, nil
}

// ForceProfileUpdate overwrites a profile's derived fields. This is the
// privileged out-of-band corrective path: it bypasses the rating engine's
// invariants on purpose and is only reachable through the authenticated
// stats-authority admin surface.
func (mm *MatchManager) ForceProfileUpdate(ctx context.Context, playerID string, patch *models.PlayerProfile) (*models.PlayerProfile, error) {
	tx, err := mm.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := getProfileForUpdate(tx, playerID)
	if err != nil {
		return nil, err
	}

	p.Rating = patch.Rating
	p.Games = patch.Games
	p.Wins = patch.Wins
	p.IsProvisional = patch.IsProvisional
	p.ProvisionalGames = patch.ProvisionalGames
	p.MaxStake = patch.MaxStake
	p.TotalStaked = patch.TotalStaked
	p.WeightedWinSum = patch.WeightedWinSum
	p.HighStakeGames = patch.HighStakeGames
	p.HighStakeWins = patch.HighStakeWins
	p.LowStakeGames = patch.LowStakeGames
	p.LowStakeWins = patch.LowStakeWins

	if err := saveProfile(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[ADMIN] Force-updated profile %s (rating=%d games=%d)", playerID, p.Rating, p.Games)
	return p, nil
}
