package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 勘定の大分類（資産・負債・収益・費用など）
type NatureGroup struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

type MainGroup struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	NatureGroupID int64  `gorm:"not null;index" json:"nature_group_id"`

	NatureGroup NatureGroup `gorm:"foreignKey:NatureGroupID" json:"nature_group"`
}

type DebitCredit string

const (
	LedgerDebit  DebitCredit = "DEBIT"
	LedgerCredit DebitCredit = "CREDIT"
)

func (d DebitCredit) Valid() bool {
	return d == LedgerDebit || d == LedgerCredit
}

type Ledger struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	MobileNo       string          `gorm:"type:varchar(15)" json:"mobile_no"`
	OpeningBalance decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"opening_balance"`
	GroupID        int64           `gorm:"not null;index" json:"group_id"`
	DebitCredit    DebitCredit     `gorm:"type:varchar(6);not null;default:'DEBIT'" json:"debit_credit"`

	Group MainGroup `gorm:"foreignKey:GroupID" json:"group"`
}

type LedgerTransactionType string

const (
	PayIn  LedgerTransactionType = "Pay In"
	PayOut LedgerTransactionType = "Pay Out"
)

func (t LedgerTransactionType) Valid() bool {
	return t == PayIn || t == PayOut
}

// 元帳の仕訳1行
type LedgerTransaction struct {
	ID              int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	LedgerID        int64                 `gorm:"not null;index:idx_ledger_tx_date,priority:1" json:"ledger_id"`
	Date            time.Time             `gorm:"type:date;not null;index:idx_ledger_tx_date,priority:2" json:"date"`
	TransactionType LedgerTransactionType `gorm:"type:varchar(7);not null" json:"transaction_type"`
	DebitAmount     decimal.Decimal       `gorm:"type:numeric(10,2);not null;default:0" json:"debit_amount"`
	CreditAmount    decimal.Decimal       `gorm:"type:numeric(10,2);not null;default:0" json:"credit_amount"`
	Remarks         string                `gorm:"type:text" json:"remarks"`

	Ledger Ledger `gorm:"foreignKey:LedgerID" json:"ledger"`
}

type IncomeType string

const (
	IncomeSales          IncomeType = "Sales"
	IncomeIndirectIncome IncomeType = "Indirect Income"
)

func (t IncomeType) Valid() bool {
	return t == IncomeSales || t == IncomeIndirectIncome
}

type IncomeStatement struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	LedgerID   int64           `gorm:"not null;index" json:"ledger_id"`
	IncomeType IncomeType      `gorm:"type:varchar(20);not null" json:"income_type"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
}

type BalanceType string

const (
	BalanceAsset     BalanceType = "Asset"
	BalanceLiability BalanceType = "Liability"
)

func (t BalanceType) Valid() bool {
	return t == BalanceAsset || t == BalanceLiability
}

type BalanceSheet struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	LedgerID    int64           `gorm:"not null;index" json:"ledger_id"`
	BalanceType BalanceType     `gorm:"type:varchar(20);not null" json:"balance_type"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"amount"`
}
