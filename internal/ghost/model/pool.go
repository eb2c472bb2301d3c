package model

// Pool identifies a known staking pool by its stake-only public key.
type Pool struct {
	PubKey string `json:"pubkey"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}
