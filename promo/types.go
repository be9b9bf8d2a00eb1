// Package promo holds the token-promotion domain: the submission entity,
// input validators, the intake flow transition function, and the
// announcement renderer. Everything here is transport-agnostic.
package promo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Chain identifies a supported network.
type Chain string

const (
	ChainETH  Chain = "ETH"
	ChainBSC  Chain = "BSC"
	ChainBASE Chain = "BASE"
	ChainPOLY Chain = "POLY"
	ChainSOL  Chain = "SOL"
	ChainTON  Chain = "TON"
)

// Chains lists supported networks in the order they are offered to users.
var Chains = []Chain{ChainETH, ChainBSC, ChainBASE, ChainPOLY, ChainSOL, ChainTON}

var chainLabels = map[Chain]string{
	ChainETH:  "Ethereum",
	ChainBSC:  "BSC",
	ChainBASE: "Base",
	ChainPOLY: "Polygon",
	ChainSOL:  "Solana",
	ChainTON:  "TON",
}

// Label returns the human-readable network name shown in keyboards and posts.
func (c Chain) Label() string {
	if l, ok := chainLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseChain maps a raw key to a supported Chain.
func ParseChain(key string) (Chain, bool) {
	c := Chain(key)
	_, ok := chainLabels[c]
	return c, ok
}

// Status tracks the payment state of a submission. The only transition is
// pending -> paid and it happens at most once.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// MaxSocialLinks caps the number of social links kept per submission.
const MaxSocialLinks = 6

// MaxDescriptionLen caps the description both at intake and at render time.
const MaxDescriptionLen = 500

// LinkList is an ordered set of URLs stored as a JSON array column.
type LinkList []string

// Value implements driver.Valuer for JSONB storage.
func (l LinkList) Value() (driver.Value, error) {
	if l == nil {
		l = LinkList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LinkList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("promo: cannot scan %T into LinkList", src)
	}
}

// Requester identifies the user who filed a submission.
type Requester struct {
	UserID   int64
	Username string
}

// Submission is one user's token-promotion request, tracked from intake
// through payment to posting.
type Submission struct {
	ID              string    `db:"id"`
	UserID          int64     `db:"user_id"`
	Username        string    `db:"username"`
	Chain           Chain     `db:"chain"`
	ContractAddress string    `db:"contract_address"`
	Description     string    `db:"description"`
	SocialLinks     LinkList  `db:"social_links"`
	ChartURL        string    `db:"chart_url"`
	PriceUSD        float64   `db:"price_usd"`
	Status          Status    `db:"status"`
	ChargeID        *string   `db:"charge_id"`
	CreatedAt       time.Time `db:"created_at"`
}

// Draft accumulates intake answers before the submission is persisted.
// It is discarded on cancel and promoted to a Submission only at confirm.
type Draft struct {
	Chain           Chain
	ContractAddress string
	Description     string
	SocialLinks     LinkList
	ChartURL        string
}

// Complete reports whether every intake field has been collected.
func (d *Draft) Complete() bool {
	return d != nil &&
		d.Chain != "" &&
		d.ContractAddress != "" &&
		len(d.SocialLinks) > 0 &&
		d.ChartURL != ""
}
