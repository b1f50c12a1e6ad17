package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/breeze/pkg/party"
)

// jsonCommitteeMember is the on-disk shape of one committee row: a JSON
// document with addresses, stakes, and workers.
type jsonCommitteeMember struct {
	PublicKey string `json:"public_key"` // hex, compressed SEC1
	Address   string `json:"address"`
	Stake     uint64 `json:"stake"`
	Workers   []string `json:"workers"`
}

type jsonCommittee struct {
	Members []jsonCommitteeMember `json:"members"`
}

// CommitteeMember is a fully-parsed committee row, with its 1-based ID
// already assigned by sorted public-key position.
type CommitteeMember struct {
	ID        party.ID
	PublicKey *secp256k1.PublicKey
	Address   string
	Stake     uint64
	Workers   []string
}

// Committee is the loaded, ID-sorted committee.
type Committee struct {
	Members []CommitteeMember
}

// ByID returns the member with the given ID, if present.
func (c *Committee) ByID(id party.ID) (CommitteeMember, bool) {
	for _, m := range c.Members {
		if m.ID == id {
			return m, true
		}
	}
	return CommitteeMember{}, false
}

// IDs returns every member's ID, in sorted order.
func (c *Committee) IDs() []party.ID {
	ids := make([]party.ID, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// N returns the committee size.
func (c *Committee) N() int { return len(c.Members) }

// LoadCommittee reads a committee file and assigns IDs by sorted
// public-key position.
func LoadCommittee(path string) (*Committee, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read committee %s: %w", path, err)
	}
	var doc jsonCommittee
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse committee %s: %w", path, err)
	}

	keys := make([]*secp256k1.PublicKey, len(doc.Members))
	byKey := make(map[string]jsonCommitteeMember, len(doc.Members))
	for i, m := range doc.Members {
		raw, err := hex.DecodeString(m.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("config: member %d public key: %w", i, err)
		}
		pk, err := secp256k1.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("config: member %d public key: %w", i, err)
		}
		keys[i] = pk
		byKey[string(pk.SerializeCompressed())] = m
	}

	sortedMembers := party.SortMembers(keys)
	members := make([]CommitteeMember, len(sortedMembers))
	for i, sm := range sortedMembers {
		raw := byKey[string(sm.PublicKey.SerializeCompressed())]
		members[i] = CommitteeMember{
			ID:        sm.ID,
			PublicKey: sm.PublicKey,
			Address:   raw.Address,
			Stake:     raw.Stake,
			Workers:   raw.Workers,
		}
	}
	return &Committee{Members: members}, nil
}
