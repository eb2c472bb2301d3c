// Package model defines domain models for Ghost block and governance ingestion.
package model

// Network names the Ghost network a record belongs to.
type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)
