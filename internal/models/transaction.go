package models

import (
	"time"

	"gorm.io/datatypes"
)

type TransactionType string

const (
	TxTrade        TransactionType = "trade"
	TxCallUp       TransactionType = "call_up"
	TxSendDown     TransactionType = "send_down"
	TxSigning      TransactionType = "signing"
	TxExtension    TransactionType = "extension"
	TxRelease      TransactionType = "release"
	TxInjury       TransactionType = "injury"
	TxActivation   TransactionType = "activation"
	TxRetirement   TransactionType = "retirement"
	TxDraftPick    TransactionType = "draft_pick"
	TxCoachChange  TransactionType = "coach_change"
)

// Transaction is the append-only audit row for every roster move. Rows
// are never updated or deleted.
type Transaction struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	Season    int             `gorm:"index:idx_tx_season_day" json:"season"`
	Day       int             `gorm:"index:idx_tx_season_day" json:"day"`
	Type      TransactionType `gorm:"index" json:"type"`
	TeamID    string          `gorm:"index" json:"team_id"`
	PlayerID  string          `json:"player_id"`
	Summary   string          `json:"summary"`
	Detail    datatypes.JSON  `json:"detail"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
