package result

import (
	"regexp"
	"strings"
	"unicode"
)

// NumberHint tells a renderer how to present a number.
type NumberHint string

const (
	NumberNormal    NumberHint = "normal"
	NumberTimestamp NumberHint = "timestamp"
	NumberCycle     NumberHint = "cycle"
	NumberValue     NumberHint = "value"
)

// TextHint tells a renderer how to present text.
type TextHint string

const (
	TextPlain     TextHint = "plain"
	TextTimestamp TextHint = "timestamp"
	TextUUID      TextHint = "uuid"
	TextURL       TextHint = "url"
	TextEmail     TextHint = "email"
	TextPhone     TextHint = "phone"
	TextBTC       TextHint = "btc"
	TextETH       TextHint = "eth"
	TextAccountID TextHint = "account-id"
	TextPrincipal TextHint = "principal"
)

var (
	timestampKeys = []string{
		"time", "date", "deadline", "timestamp", "statusat", "createdat",
		"updatedat", "deletedat", "validuntil", "status_at", "created_at",
		"updated_at", "deleted_at", "valid_until",
	}
	cycleKeys = []string{"cycle"}

	accountIDPattern = regexp.MustCompile(`(?i)account_identifier|ledger_account|block_hash|transaction_hash|tx_hash`)
)

func containsAny(label string, keys []string) bool {
	lower := strings.ToLower(label)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// tokens splits a label on underscores, dashes, spaces and camel case
// boundaries.
func tokens(label string) map[string]bool {
	var b strings.Builder
	prev := rune(0)
	for _, r := range label {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	out := map[string]bool{}
	for _, t := range strings.Fields(b.String()) {
		out[t] = true
	}
	return out
}

// NumberFormat derives the presentation of a number from its label.
func NumberFormat(label string) NumberHint {
	switch {
	case label == "":
		return NumberNormal
	case containsAny(label, timestampKeys):
		return NumberTimestamp
	case containsAny(label, cycleKeys):
		return NumberCycle
	default:
		return NumberNormal
	}
}

// TextFormat derives the presentation of text from its label.
func TextFormat(label string) TextHint {
	if label == "" {
		return TextPlain
	}
	if containsAny(label, timestampKeys) {
		return TextTimestamp
	}
	if accountIDPattern.MatchString(label) {
		return TextAccountID
	}
	t := tokens(label)
	switch {
	case t["email"] || t["mail"]:
		return TextEmail
	case t["phone"] || t["tel"] || t["mobile"]:
		return TextPhone
	case t["url"] || t["link"] || t["website"]:
		return TextURL
	case t["uuid"] || t["guid"]:
		return TextUUID
	case t["btc"] || t["bitcoin"]:
		return TextBTC
	case t["eth"] || t["ethereum"]:
		return TextETH
	case t["principal"] || t["canister"]:
		return TextPrincipal
	default:
		return TextPlain
	}
}
