package model

// Token describes one tradable coin with market figures attached.
type Token struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	CoinType  string  `json:"coinType"` // fully qualified on-chain type, e.g. 0x2::sui::SUI
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Volume24h float64 `json:"volume24h"`
	MarketCap float64 `json:"marketCap"`
}

// Holding is one coin balance inside a wallet portfolio.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	CoinType string  `json:"coinType"`
	Balance  float64 `json:"balance"`
	Price    float64 `json:"price"`
	ValueUSD float64 `json:"valueUsd"`
}

// LiquidityPosition is one active vault position held by a wallet.
type LiquidityPosition struct {
	VaultSymbol string  `json:"vaultSymbol"`
	EquityUSD   float64 `json:"equityUsd"`
	LPBalance   float64 `json:"lpBalance"`
	APY         float64 `json:"apy"`
}

// Portfolio aggregates a wallet's holdings and vault positions.
type Portfolio struct {
	WalletAddress      string              `json:"walletAddress"`
	NetWorthUSD        float64             `json:"netWorthUsd"`
	Holdings           []Holding           `json:"holdings"`
	LiquidityPositions []LiquidityPosition `json:"liquidityPositions,omitempty"`
}

// SwapQuote is the prepared (unsigned) outcome of a swap request.
type SwapQuote struct {
	FromSymbol     string  `json:"fromSymbol"`
	ToSymbol       string  `json:"toSymbol"`
	FromCoinType   string  `json:"fromCoinType"`
	ToCoinType     string  `json:"toCoinType"`
	AmountIn       float64 `json:"amountIn"`
	ExpectedOut    float64 `json:"expectedOut"`
	MinReceived    float64 `json:"minReceived"`
	PriceImpactPct float64 `json:"priceImpactPct"`
	SlippagePct    float64 `json:"slippagePct"`
}

// Vault describes one liquidity vault available for deposits.
type Vault struct {
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	APY     float64 `json:"apy"`
	TVLUSD  float64 `json:"tvlUsd"`
}

// DepositQuote is the prepared (unsigned) outcome of a vault deposit request.
type DepositQuote struct {
	VaultSymbol    string  `json:"vaultSymbol"`
	VaultAddress   string  `json:"vaultAddress"`
	AmountIn       float64 `json:"amountIn"`
	ExpectedLPOut  float64 `json:"expectedLpOut"`
	APY            float64 `json:"apy"`
	RewardAPY      float64 `json:"rewardApy,omitempty"`
	DepositSymbol  string  `json:"depositSymbol"`
	DepositAddress string  `json:"depositAddress"`
}

// SocialPost is one scored post returned by the social search adapter.
type SocialPost struct {
	Author    string  `json:"author"`
	Text      string  `json:"text"`
	URL       string  `json:"url"`
	Likes     int     `json:"likes"`
	Sentiment float64 `json:"sentiment"` // -1..1
}
