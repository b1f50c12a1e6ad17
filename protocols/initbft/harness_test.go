package initbft_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/luxfi/breeze/pkg/math/curve"
	"github.com/luxfi/breeze/pkg/model"
	"github.com/luxfi/breeze/pkg/network"
	"github.com/luxfi/breeze/pkg/party"
	"github.com/luxfi/breeze/pkg/sign"
	"github.com/luxfi/breeze/pkg/wire"
	"github.com/luxfi/breeze/protocols/initbft"
)

// digestSetHashForTest mirrors initbft's unexported digestSetHash exactly
// (same sort order, same domain bytes) so votes this test signs verify
// against the actor's own recomputation of the hash.
func digestSetHashForTest(set []model.DealerCommitment) [32]byte {
	sorted := append([]model.DealerCommitment(nil), set...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Dealer < sorted[j].Dealer })
	h := blake3.New()
	for _, dc := range sorted {
		var idBuf [4]byte
		binary.BigEndian.PutUint32(idBuf[:], uint32(dc.Dealer))
		h.Write(idBuf[:])
		h.Write(dc.Commitment[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// captureSender is a network.Sender that records every broadcast payload
// instead of delivering it, so a test can inspect exactly what an Actor
// chose to (re-)broadcast after a given input sequence.
type captureSender struct {
	broadcasts chan []byte
}

func newCaptureSender() *captureSender {
	return &captureSender{broadcasts: make(chan []byte, 64)}
}

func (s *captureSender) Send(ctx context.Context, addr string, payload []byte) network.Cancel {
	return func() {}
}

func (s *captureSender) Broadcast(ctx context.Context, addrs []string, payload []byte) network.Cancel {
	select {
	case s.broadcasts <- payload:
	default:
	}
	return func() {}
}

// fourPartyFixture builds the shared committee material (secrets, public
// keys, IDs) a single-node Init-BFT test drives against, without needing a
// live network of all four actors.
type fourPartyFixture struct {
	ids     []party.ID
	secrets map[party.ID]*curve.Scalar
	publics map[party.ID]*curve.Point
}

func newFourPartyFixture() *fourPartyFixture {
	f := &fourPartyFixture{
		secrets: make(map[party.ID]*curve.Scalar, 4),
		publics: make(map[party.ID]*curve.Point, 4),
	}
	for i := 1; i <= 4; i++ {
		id := party.ID(i)
		f.ids = append(f.ids, id)
		s, err := curve.RandomScalar()
		if err != nil {
			panic(err)
		}
		f.secrets[id] = s
		f.publics[id] = s.ActOnBase()
	}
	return f
}

func (f *fourPartyFixture) config(self party.ID, sender *captureSender) initbft.Config {
	addrs := make(map[party.ID]string, len(f.ids))
	for _, id := range f.ids {
		addrs[id] = fmt.Sprintf("node-%d", id)
	}
	return initbft.Config{
		Self:       self,
		IDs:        f.ids,
		Addrs:      addrs,
		Secret:     f.secrets[self],
		PublicKeys: f.publics,
		Sender:     sender,
	}
}

// encodeVote builds a validly-signed voteMsg-shaped payload as if signer
// had proposed set, framed exactly as the actor's Dispatch expects.
func (f *fourPartyFixture) encodeVote(signer party.ID, set []model.DealerCommitment) []byte {
	hash := digestSetHashForTest(set)
	sig, err := sign.Sign(f.secrets[signer], hash[:])
	if err != nil {
		panic(err)
	}
	payload, err := wire.EncodeDumbo(f.publics[signer].Bytes(), wire.TagVote, testVoteMsg{
		Set: set, Signer: signer, Sig: sig.Bytes(),
	})
	if err != nil {
		panic(err)
	}
	return payload
}

func (f *fourPartyFixture) encodeCertificate(cert model.BreezeCertificate) []byte {
	payload, err := wire.EncodeDumbo(f.publics[cert.Dealer].Bytes(), wire.TagCertificate, testCertMsg{Cert: cert})
	if err != nil {
		panic(err)
	}
	return payload
}

// testVoteMsg and testCertMsg mirror initbft's unexported voteMsg/certMsg
// field-for-field so this external test package can hand-craft Dumbo
// payloads the same way protocols/breeze's own tests craft Share payloads.
type testVoteMsg struct {
	Set    []model.DealerCommitment
	Signer party.ID
	Sig    []byte
}

type testCertMsg struct {
	Cert model.BreezeCertificate
}

// decodeVote decodes a broadcast captured from captureSender back into a
// testVoteMsg, so a test can assert on what an Actor chose to re-vote.
func decodeVote(payload []byte) (testVoteMsg, error) {
	envelope, err := wire.DecodeDumbo(payload)
	if err != nil {
		return testVoteMsg{}, err
	}
	var msg testVoteMsg
	err = envelope.Decode(&msg)
	return msg, err
}

func dummyCertificate(epoch party.Epoch, dealer party.ID, quorum int) model.BreezeCertificate {
	cert := model.BreezeCertificate{Epoch: epoch, Dealer: dealer}
	for i := 0; i < quorum; i++ {
		cert.Signatures = append(cert.Signatures, model.Signature{Signer: party.ID(i + 1), Sig: []byte{byte(i + 1)}})
	}
	return cert
}
