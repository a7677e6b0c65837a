// Package payload implements the marker convention that lets a tool result
// carry one machine-readable JSON object inside an otherwise free-text
// response. The marker is an HTML comment so chat renderers never display it,
// while a presentation layer can extract it with a single parse step.
//
// Contract: at most one payload per assistant turn; stripping the marker and
// re-embedding the same payload reproduces byte-identical text; malformed
// markers degrade to "no structured data", never to an error.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Kind tags the schema of an embedded payload.
type Kind string

const (
	KindPortfolioUI      Kind = "PORTFOLIO_UI"
	KindSwapAction       Kind = "SWAP_ACTION"
	KindLPDepositAction  Kind = "LP_DEPOSIT_ACTION"
	KindTrendingTokensUI Kind = "TRENDING_TOKENS_UI"
)

// Payload is one extracted marker body.
type Payload struct {
	Kind Kind
	JSON json.RawMessage
}

// Decode unmarshals the payload body into v.
func (p *Payload) Decode(v any) error {
	return json.Unmarshal(p.JSON, v)
}

var markerRe = regexp.MustCompile(`(?s)<!--suiui:([A-Z_]+) (.*?)-->`)

// Embed serializes v and wraps it in a marker for the given kind. The result
// is appended verbatim to the visible response text.
func Embed(kind Kind, v any) (string, error) {
	if !knownKind(kind) {
		return "", fmt.Errorf("unknown payload kind %q", kind)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return fmt.Sprintf("<!--suiui:%s %s-->", kind, b), nil
}

// Extract locates the first marker in text, parses and validates its body.
// It returns (nil, false) on any parse or validation failure so a malformed
// payload degrades to plain text instead of crashing the caller.
func Extract(text string) (*Payload, bool) {
	m := markerRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	kind := Kind(m[1])
	if !knownKind(kind) {
		return nil, false
	}

	raw := json.RawMessage(m[2])
	if !json.Valid(raw) {
		return nil, false
	}
	if !validate(kind, raw) {
		return nil, false
	}

	return &Payload{Kind: kind, JSON: compact(raw)}, true
}

// Strip removes every marker from text. Applying Strip to already-stripped
// text is a no-op, so the display layer can call it defensively.
func Strip(text string) string {
	return markerRe.ReplaceAllString(text, "")
}

func knownKind(k Kind) bool {
	switch k {
	case KindPortfolioUI, KindSwapAction, KindLPDepositAction, KindTrendingTokensUI:
		return true
	}
	return false
}

// validate checks the minimal required fields per kind. A payload missing
// them is useless to the presentation layer and is treated as absent.
func validate(kind Kind, raw json.RawMessage) bool {
	switch kind {
	case KindPortfolioUI:
		var v struct {
			Holdings []json.RawMessage `json:"holdings"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		return len(v.Holdings) > 0
	case KindSwapAction:
		var v struct {
			FromCoinType string  `json:"fromCoinType"`
			ToCoinType   string  `json:"toCoinType"`
			AmountIn     float64 `json:"amountIn"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		return v.FromCoinType != "" && v.ToCoinType != "" && v.AmountIn > 0
	case KindLPDepositAction:
		var v struct {
			VaultAddress string  `json:"vaultAddress"`
			AmountIn     float64 `json:"amountIn"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		return v.VaultAddress != "" && v.AmountIn > 0
	case KindTrendingTokensUI:
		var v struct {
			Tokens []json.RawMessage `json:"tokens"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		return len(v.Tokens) > 0
	}
	return false
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
