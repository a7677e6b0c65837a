package tools

import (
	"bytes"
	"strconv"
)

// Fixed acknowledgement sentences for the short-circuit tools. The turn ends
// with exactly this text (plus the payload marker); the model adds nothing.
const (
	SwapReadyAck      = "Your swap is prepared. Review the details and confirm in your wallet."
	DepositReadyAck   = "Your deposit is prepared. Review the details and confirm in your wallet."
	PortfolioReadyAck = "Here is your current portfolio."
)

// Reply is the uniform tool output: user-presentable text, optionally
// carrying one embedded payload marker. Adapter failures are folded into Text
// as an explanation, so a tool invocation never fails the turn.
type Reply struct {
	Text string `json:"text"`
}

func textReply(s string) *Reply {
	return &Reply{Text: s}
}

// Amount tolerates the model sending a numeric string instead of a JSON
// number. Unparseable values decode to zero so the positive-amount validation
// produces the user-facing message instead of an unmarshal error aborting the
// turn.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(n)
	return nil
}
