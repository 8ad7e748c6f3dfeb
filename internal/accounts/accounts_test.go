package accounts

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
)

func TestTransferRejectsSameAccount(t *testing.T) {
	// The guard fires before any statement runs, so a zero-value tx is safe.
	err := Transfer(&sqlx.Tx{}, 7, 7, 1000, "MATCH", sql.NullInt64{}, "loop")
	if err == nil {
		t.Fatal("transfer between an account and itself did not fail")
	}
}

func TestTransferRejectsNilTx(t *testing.T) {
	if err := Transfer(nil, 1, 2, 1000, "MATCH", sql.NullInt64{}, ""); err == nil {
		t.Fatal("transfer with nil tx did not fail")
	}
}
