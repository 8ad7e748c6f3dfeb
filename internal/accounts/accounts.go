package accounts

import (
	"database/sql"
	"fmt"
	"log"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/chessbets/backend/internal/models"
	"github.com/chessbets/backend/internal/wager"
)

// account types constants
const (
	AccountPlayerWallet   = "player_wallet"
	AccountPlayerWinnings = "player_winnings"
	AccountPlatform       = "platform"
	AccountRoyalty        = "royalty"
	AccountEscrow         = "escrow"
)

// GetOrCreateAccount returns an account for the given owner and type, creating it if missing.
// System accounts (platform, escrow, royalty) pass an empty ownerPlayerID.
func GetOrCreateAccount(db *sqlx.DB, accountType, ownerPlayerID string) (*models.Account, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	var a models.Account
	if ownerPlayerID == "" {
		if err := db.Get(&a, `SELECT id, account_type, owner_player_id, balance, created_at, updated_at FROM accounts WHERE account_type=$1 AND owner_player_id IS NULL`, accountType); err == nil {
			return &a, nil
		}
		if _, err := db.Exec(`INSERT INTO accounts (account_type, balance, created_at, updated_at) VALUES ($1, 0, NOW(), NOW()) ON CONFLICT DO NOTHING`, accountType); err != nil {
			return nil, err
		}
		if err := db.Get(&a, `SELECT id, account_type, owner_player_id, balance, created_at, updated_at FROM accounts WHERE account_type=$1 AND owner_player_id IS NULL`, accountType); err != nil {
			return nil, err
		}
		return &a, nil
	}

	if err := db.Get(&a, `SELECT id, account_type, owner_player_id, balance, created_at, updated_at FROM accounts WHERE account_type=$1 AND owner_player_id=$2`, accountType, ownerPlayerID); err == nil {
		return &a, nil
	}
	if _, err := db.Exec(`INSERT INTO accounts (account_type, owner_player_id, balance, created_at, updated_at) VALUES ($1, $2, 0, NOW(), NOW()) ON CONFLICT DO NOTHING`, accountType, ownerPlayerID); err != nil {
		return nil, err
	}
	if err := db.Get(&a, `SELECT id, account_type, owner_player_id, balance, created_at, updated_at FROM accounts WHERE account_type=$1 AND owner_player_id=$2`, accountType, ownerPlayerID); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBalance reads the current balance of an account by id within a tx.
func GetBalance(tx *sqlx.Tx, accountID int) (int64, error) {
	var balance int64
	if err := tx.Get(&balance, `SELECT balance FROM accounts WHERE id=$1`, accountID); err != nil {
		return 0, err
	}
	return balance, nil
}

// Transfer performs a single debit/credit between accounts within an existing tx.
// It selects both accounts FOR UPDATE, checks balances with overflow-safe
// arithmetic and inserts an account_transactions row. Amounts are integer base
// currency units; a transfer that would wrap or drive a player-owned account
// negative fails the whole transaction.
func Transfer(tx *sqlx.Tx, debitAccountID, creditAccountID int, amount int64, referenceType string, referenceID sql.NullInt64, description string) error {
	if tx == nil {
		return fmt.Errorf("tx is nil")
	}
	if debitAccountID == creditAccountID {
		// One locked row would back both sides and the second balance
		// update would overwrite the first, minting amount.
		return fmt.Errorf("transfer from account %d to itself", debitAccountID)
	}
	if amount < 0 {
		return fmt.Errorf("negative transfer amount %d", amount)
	}

	// Lock both accounts
	var accts []models.Account
	query := `SELECT id, account_type, owner_player_id, balance, created_at, updated_at FROM accounts WHERE id IN ($1,$2) FOR UPDATE`
	if err := tx.Select(&accts, query, debitAccountID, creditAccountID); err != nil {
		return err
	}

	var debitAcc, creditAcc *models.Account
	for i := range accts {
		if accts[i].ID == debitAccountID {
			debitAcc = &accts[i]
		}
		if accts[i].ID == creditAccountID {
			creditAcc = &accts[i]
		}
	}
	if debitAcc == nil || creditAcc == nil {
		return fmt.Errorf("account not found for transfer")
	}

	if debitAcc.Balance < amount {
		switch debitAcc.AccountType {
		case AccountEscrow:
			return fmt.Errorf("account %d: %w", debitAccountID, wager.ErrInsufficientEscrow)
		default:
			return fmt.Errorf("account %d: %w", debitAccountID, wager.ErrInsufficientFunds)
		}
	}
	if creditAcc.Balance > math.MaxInt64-amount {
		return fmt.Errorf("credit account %d: %w", creditAccountID, wager.ErrArithmeticOverflow)
	}

	newDebitBalance := debitAcc.Balance - amount
	newCreditBalance := creditAcc.Balance + amount

	if _, err := tx.Exec(`UPDATE accounts SET balance=$1, updated_at=NOW() WHERE id=$2`, newDebitBalance, debitAcc.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE accounts SET balance=$1, updated_at=NOW() WHERE id=$2`, newCreditBalance, creditAcc.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO account_transactions (debit_account_id, credit_account_id, amount, reference_type, reference_id, description, created_at) VALUES ($1,$2,$3,$4,$5,$6,NOW())`, debitAccountID, creditAccountID, amount, referenceType, referenceID, description); err != nil {
		return err
	}

	log.Printf("[ACCT] Transfer completed: debit_acc=%d credit_acc=%d amount=%d ref_type=%s ref_id=%v desc=%s", debitAccountID, creditAccountID, amount, referenceType, referenceID, description)

	return nil
}
