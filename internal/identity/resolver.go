// Package identity maps chat identities (EVM wallet addresses) to players.
package identity

import (
	"context"
	"encoding/hex"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"example.com/meme-sphinx/internal/game"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AddressResolver accepts well-formed EVM addresses and nothing else.
type AddressResolver struct {
	log *zap.Logger
}

func NewAddressResolver(log *zap.Logger) *AddressResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &AddressResolver{log: log.Named("identity")}
}

// Resolve returns a nil profile for anything that is not a valid address,
// including mixed-case input with a bad checksum.
func (r *AddressResolver) Resolve(_ context.Context, identity string) (*game.Profile, error) {
	addr, ok := Normalize(identity)
	if !ok {
		r.log.Debug("unresolvable identity", zap.String("identity", identity))
		return nil, nil
	}
	return &game.Profile{Address: addr}, nil
}

// Canonical maps every spelling of a valid address to its checksummed
// form. Anything else is returned trimmed but otherwise unchanged.
func (r *AddressResolver) Canonical(identity string) string {
	if addr, ok := Normalize(identity); ok {
		return addr
	}
	return strings.TrimSpace(identity)
}

// Normalize validates an address and returns its EIP-55 checksummed form.
func Normalize(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if !addressRe.MatchString(address) {
		return "", false
	}

	sum := Checksum(address)
	body := address[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && address != sum {
		return "", false
	}
	return sum, true
}

// Checksum applies EIP-55 mixed-case encoding to a 0x-prefixed hex address.
func Checksum(address string) string {
	lower := strings.ToLower(strings.TrimPrefix(address, "0x"))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}
