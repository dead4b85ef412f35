package model

import "github.com/shopspring/decimal"

// RejectionStage names the pipeline step at which a START stopped.
type RejectionStage string

// Rejection stages.
const (
	StageReplyMatching   RejectionStage = "reply_matching"
	StageConfirmMatching RejectionStage = "confirm_matching"
	StageAssembly        RejectionStage = "assembly"
)

// Rejection reason codes.
const (
	ReasonReplyNotFound       = "reply_not_found"
	ReasonConfirmNotFound     = "confirm_not_found"
	ReasonUnclearSide         = "unclear_side"
	ReasonNoVolume            = "no_volume"
	ReasonNoPrice             = "no_price"
	ReasonSameBankSides       = "same_bank_sides"
	ReasonVolumeOutOfRange    = "volume_out_of_range"
	ReasonPriceOutOfRange     = "price_out_of_range"
	reasonConfirmStatusPrefix = "confirm_"
)

// ConfirmStatusReason returns the rejection reason for a non-confirmed status.
func ConfirmStatusReason(status ConfirmStatus) string {
	return reasonConfirmStatusPrefix + string(status)
}

// Deal is a validated trade reconstructed from a START/REPLY/CONFIRM triple.
type Deal struct {
	Amount       decimal.Decimal
	ActualPrice  decimal.Decimal
	Date         string
	Time         string
	BuyBank      string
	SellBank     string
	StartIndex   int
	ReplyIndex   int
	ConfirmIndex int
	Price        int
}

// Rejection explains why a START did not become a deal.
type Rejection struct {
	Stage      RejectionStage
	Reason     string
	StartIndex int
}
