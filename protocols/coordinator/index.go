package coordinator

import "github.com/luxfi/breeze/pkg/party"

// roundToEpochIndex maps a consensus round number to the (epoch, index)
// pair whose reconstructed value answers that round's coin request (spec
// §4.4: "(e, index) = ((r-1)/(2L), ((r-1) mod 2L)+1)").
//
// The epoch this produces is already the 0-indexed certificate_buffer key
// (the epoch whose common core must be decided and whose digest-set is
// reconstructed against), not a 1-indexed round-window number offset by
// one from it: the committee decides epoch 0's core at genesis before any
// round is ever requested, so a literal "check e-1 decided" would demand a
// nonexistent epoch -1 for every round in epoch 0's window. Using e
// directly is the only reading under which the formula is answerable for
// round 1.
func roundToEpochIndex(r uint64, leadersPerEpoch int) (party.Epoch, party.Index) {
	roundsPerEpoch := uint64(2 * leadersPerEpoch)
	e := (r - 1) / roundsPerEpoch
	index := (r-1)%roundsPerEpoch + 1
	return party.Epoch(e), party.Index(index)
}

// epochIndexToRound is roundToEpochIndex's inverse, used to answer a
// reconstructed coin value with the round number that asked for it.
func epochIndexToRound(e party.Epoch, index party.Index, leadersPerEpoch int) uint64 {
	roundsPerEpoch := uint64(2 * leadersPerEpoch)
	return uint64(e)*roundsPerEpoch + uint64(index)
}
