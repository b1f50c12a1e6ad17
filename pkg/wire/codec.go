package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// BreezeTag discriminates the payload carried by a BreezeMessage.
type BreezeTag uint8

const (
	TagShare BreezeTag = iota
	TagReply
	TagConfirm
	TagMerkleRoots
	TagReconstruct
)

func (t BreezeTag) String() string {
	switch t {
	case TagShare:
		return "Share"
	case TagReply:
		return "Reply"
	case TagConfirm:
		return "Confirm"
	case TagMerkleRoots:
		return "Merkle"
	case TagReconstruct:
		return "Reconstruct"
	default:
		return fmt.Sprintf("BreezeTag(%d)", uint8(t))
	}
}

// BreezeMessage is the envelope every Breeze actor message travels in:
// `BreezeMessage { sender: PublicKey, content: Share | Reply | Confirm |
// Merkle | Reconstruct }`. Content is left as a raw CBOR blob so
// that pkg/wire has no dependency on the concrete PVSS/actor payload types;
// callers decode it with (*BreezeMessage).Decode once they know Tag.
type BreezeMessage struct {
	Sender  []byte
	Tag     BreezeTag
	Content cbor.RawMessage
}

// EncodeBreeze serializes a BreezeMessage envelope around content.
func EncodeBreeze(sender []byte, tag BreezeTag, content interface{}) ([]byte, error) {
	raw, err := cbor.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal breeze content: %w", err)
	}
	msg := BreezeMessage{Sender: sender, Tag: tag, Content: raw}
	return cbor.Marshal(&msg)
}

// DecodeBreeze parses a BreezeMessage envelope; the caller still needs to
// call Decode on the result to get at Content.
func DecodeBreeze(data []byte) (*BreezeMessage, error) {
	var msg BreezeMessage
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("wire: unmarshal breeze envelope: %w", err)
	}
	return &msg, nil
}

// Decode unmarshals m.Content into out.
func (m *BreezeMessage) Decode(out interface{}) error {
	return cbor.Unmarshal(m.Content, out)
}

// DumboTag discriminates the payload carried by a DumboMessage, Init-BFT's
// wire envelope.
type DumboTag uint8

const (
	TagCertificate DumboTag = iota
	TagVote
	TagDecided
)

func (t DumboTag) String() string {
	switch t {
	case TagCertificate:
		return "Certificate"
	case TagVote:
		return "Vote"
	case TagDecided:
		return "Decided"
	default:
		return fmt.Sprintf("DumboTag(%d)", uint8(t))
	}
}

// DumboMessage is Init-BFT's wire envelope:
// `DumboMessage { sender, content: Certificate | Vote(set, sig) | Decided(set, sigs) }`.
type DumboMessage struct {
	Sender  []byte
	Tag     DumboTag
	Content cbor.RawMessage
}

// EncodeDumbo serializes a DumboMessage envelope around content.
func EncodeDumbo(sender []byte, tag DumboTag, content interface{}) ([]byte, error) {
	raw, err := cbor.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal dumbo content: %w", err)
	}
	msg := DumboMessage{Sender: sender, Tag: tag, Content: raw}
	return cbor.Marshal(&msg)
}

// DecodeDumbo parses a DumboMessage envelope.
func DecodeDumbo(data []byte) (*DumboMessage, error) {
	var msg DumboMessage
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("wire: unmarshal dumbo envelope: %w", err)
	}
	return &msg, nil
}

// Decode unmarshals m.Content into out.
func (m *DumboMessage) Decode(out interface{}) error {
	return cbor.Unmarshal(m.Content, out)
}

// Ack is the literal acknowledgement string for an inbound frame. No code
// in this module sends it: the Dispatch handlers return nothing to the
// sender.
const Ack = "Ack"
