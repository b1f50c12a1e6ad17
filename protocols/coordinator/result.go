package coordinator

import (
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
)

// reconKey addresses one reconstructed value's slot in both the memo table
// and the pending-waiter table.
type reconKey struct {
	epoch party.Epoch
	index party.Index
}

// CoinResult answers a DAG consensus round's coin request.
type CoinResult struct {
	Round uint64
	Value model.RandomNum
	Err   error
}

// BeaconResult answers an external consumer's next_beacon() request.
type BeaconResult struct {
	Epoch party.Epoch
	Index party.Index
	Value model.RandomNum
	Err   error
}
