package initbft

import (
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/party"
)

// certMsg carries a dealer's own epoch-0 BreezeCertificate, broadcast as
// the first step of genesis agreement.
type certMsg struct {
	Cert model.BreezeCertificate
}

// voteMsg carries one node's proposed common-core set and its signature
// over the set's digest.
type voteMsg struct {
	Set    []model.DealerCommitment
	Signer party.ID
	Sig    []byte
}

// decidedMsg carries the agreed set together with the 2f+1 vote
// signatures that justify it.
type decidedMsg struct {
	Set  []model.DealerCommitment
	Sigs []model.Signature
}
