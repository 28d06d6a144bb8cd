package models

// TokenizeRequest is the body of POST /tokenize.
type TokenizeRequest struct {
	AssetID       string `json:"asset_id" validate:"required,max=128"`
	TokenName     string `json:"token_name" validate:"required,max=64"`
	TokenSymbol   string `json:"token_symbol" validate:"required,alphanum,max=11"`
	TotalSupply   int64  `json:"total_supply" validate:"gt=0"`
	FractionCount int64  `json:"fraction_count" validate:"gt=0,ltefield=TotalSupply"`
}

// ABIInput is a named, typed contract function argument.
type ABIInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ABIEntry is one contract ABI item.
type ABIEntry struct {
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Inputs []ABIInput `json:"inputs"`
}

// ConstructorArgs echoes the request as contract constructor arguments.
type ConstructorArgs struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	TotalSupply   int64  `json:"total_supply"`
	FractionCount int64  `json:"fraction_count"`
	AssetID       string `json:"asset_id"`
}

// TokenizeResponse is a placeholder contract payload; nothing is deployed.
type TokenizeResponse struct {
	Status           string          `json:"status"`
	ContractABI      []ABIEntry      `json:"contract_abi"`
	ContractBytecode string          `json:"contract_bytecode"`
	ConstructorArgs  ConstructorArgs `json:"constructor_args"`
}

// placeholderBytecode marks the response as a stub; it is not deployable code.
const placeholderBytecode = "0x6000...DEADBEEF"

// NewTokenizeResponse builds the placeholder payload for req.
func NewTokenizeResponse(req *TokenizeRequest) *TokenizeResponse {
	return &TokenizeResponse{
		Status: "ready",
		ContractABI: []ABIEntry{{
			Type: "function",
			Name: "mintAsset",
			Inputs: []ABIInput{
				{Name: "to", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
			},
		}},
		ContractBytecode: placeholderBytecode,
		ConstructorArgs: ConstructorArgs{
			Name:          req.TokenName,
			Symbol:        req.TokenSymbol,
			TotalSupply:   req.TotalSupply,
			FractionCount: req.FractionCount,
			AssetID:       req.AssetID,
		},
	}
}
