// Package pool attributes staked blocks to known Ghost staking pools.
package pool

import "github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"

// KnownPools lists the staking pools recognised by their stake-only public key.
var KnownPools = []model.Pool{
	{PubKey: "gcs179wukwy95kewa6pex7f47w3xuzn3nywqdng394", URL: "https://myghost.org/", Active: true},
	{PubKey: "gcs1wzjvh9cmdf5h9atk785tvmu68729534rzu34p6", URL: "https://mega.myghost.org/", Active: true},
	{PubKey: "gcs1gvdfylxy4597rq5qutqelr9m37ewtsvzkza8j2", URL: "https://ghostcsp.ddns.net/", Active: true},
	{PubKey: "gcs1zn850aeltu0d85fruw4wf5yt2e4nj990802p2r", URL: "https://superghostpos.ru/", Active: true},
	{PubKey: "gcs169zkwmr9zt8mz2epql8wnly3dyf4hkavcprrm2", URL: "https://пул.гост.рус", Active: true},
	{PubKey: "gcs1al0tw5g8danpluh2rsqxkd5cj4sc08wc2tsvjt", URL: "https://ghostake.com", Active: false},
	{PubKey: "gcs12ezltnndc6f6ds4zcwdy82d6mv94xx2anch950", URL: "https://ghost.coldstake.io/", Active: false},
	{PubKey: "gcs1wmr49e2fd8p09dll8djdfsek6m5zuxhjdq3c4c", URL: "https://ghost-pool.darkpay.market/", Active: false},
	{PubKey: "gcs1cxgy3uzz05djx5j0g40trxkweq7jwllkzzpkf5", URL: "https://ghoststake.com/", Active: false},
	{PubKey: "gcs1gujv3jjfec75pqkezjckskxw9cfvvdmjkw5g6x", URL: "https://ghost.novastera.eu/", Active: false},
	{PubKey: "gcs10hnqtq2uvm538n8xck5e7phyqgast5v2m5wv7f", URL: "https://ghost.cheap/", Active: false},
	{PubKey: "gcs154p3rm80dg3arc5jak3293mkgk45uhfggej3da", URL: "https://ghost-pool.net/", Active: false},
}

// Table is an immutable index of pools by stake-only public key.
type Table struct {
	byPubKey map[string]model.Pool
}

// NewTable indexes pools. When a public key repeats, the first entry wins.
func NewTable(pools []model.Pool) *Table {
	byPubKey := make(map[string]model.Pool, len(pools))
	for _, p := range pools {
		if _, exists := byPubKey[p.PubKey]; exists {
			continue
		}
		byPubKey[p.PubKey] = p
	}
	return &Table{byPubKey: byPubKey}
}

// Lookup returns the pool registered under a stake-only address.
func (t *Table) Lookup(stakeOnlyAddress string) (model.Pool, bool) {
	p, ok := t.byPubKey[stakeOnlyAddress]
	return p, ok
}

// Len returns the number of indexed pools.
func (t *Table) Len() int {
	return len(t.byPubKey)
}
