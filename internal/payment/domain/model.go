package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Method string

const (
	MethodCash          Method = "Cash"
	MethodBankTransfer  Method = "BankTransfer"
	MethodGatewayOnline Method = "GatewayOnline"
	MethodManual        Method = "Manual"
)

// ParseMethod maps client supplied method names, including the legacy
// "Bank Transfer" and "Razorpay" labels, to a Method. Empty means Manual.
func ParseMethod(raw string) (Method, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "", "manual":
		return MethodManual, true
	case "cash":
		return MethodCash, true
	case "banktransfer":
		return MethodBankTransfer, true
	case "gatewayonline", "razorpay", "online":
		return MethodGatewayOnline, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
)

func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed":
		return StatusCompleted, true
	case "pending":
		return StatusPending, true
	default:
		return "", false
	}
}

// Payment is an append-only ledger line for a member. It is never updated
// after insert.
type Payment struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	MemberID        snowflake.ID `json:"memberId"`
	TotalAmount     float64      `json:"totalAmount"`
	PaidAmount      float64      `json:"paidAmount"`
	RemainingAmount float64      `json:"remainingAmount"`
	Method          Method       `json:"method"`
	Status          Status       `json:"status"`
	TransactionID   *string      `json:"transactionId,omitempty"`
	GatewayOrderID  *string      `json:"gatewayOrderId,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

func (Payment) TableName() string { return "payments" }

type MemberSummary struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type PaymentView struct {
	Payment
	Member *MemberSummary `json:"member,omitempty"`
}

type PendingDue struct {
	MemberID     snowflake.ID  `json:"memberId"`
	TotalPending float64       `json:"totalPending"`
	Member       MemberSummary `json:"member"`
}

// RevenueEntry is the slice of a payment the dashboard needs.
type RevenueEntry struct {
	PaidAmount float64
	CreatedAt  time.Time
}

// Order is a remote gateway order. Notes carry the member id.
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
	Notes    Notes  `json:"notes"`
}

const OrderNoteMemberID = "memberId"

// Notes are the key/value annotations the gateway keeps on orders and
// payments. The gateway encodes empty notes as [] rather than {}.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Notes{}
		return nil
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) > 0 {
			return errors.New("notes: non-empty array")
		}
		*n = Notes{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Notes, len(raw))
	for key, value := range raw {
		var str string
		if err := json.Unmarshal(value, &str); err == nil {
			out[key] = str
			continue
		}
		out[key] = string(bytes.TrimSpace(value))
	}
	*n = out
	return nil
}

// EventRecord stores a received gateway webhook for idempotent processing.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Provider        string         `json:"provider"`
	ProviderEventID string         `json:"providerEventId"`
	EventType       string         `json:"eventType"`
	Payload         datatypes.JSON `json:"payload"`
	ReceivedAt      time.Time      `json:"receivedAt"`
	ProcessedAt     *time.Time     `json:"processedAt"`
}

func (EventRecord) TableName() string { return "payment_events" }

// Settle computes the remaining balance and status for a payment. Amounts
// are rounded to the minor unit.
func Settle(total, paid float64) (float64, Status) {
	remaining := RoundMinor(total - paid)
	if remaining <= 0 {
		return 0, StatusCompleted
	}
	return remaining, StatusPending
}

func RoundMinor(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToMinor converts a major-unit amount to integer minor units.
func ToMinor(v float64) int64 {
	return int64(math.Round(v * 100))
}

func FromMinor(v int64) float64 {
	return float64(v) / 100
}
