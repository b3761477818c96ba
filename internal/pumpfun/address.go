// Package pumpfun holds pump.fun program constants and address helpers.
package pumpfun

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ProgramID is the pump.fun bonding curve program.
const ProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// bondingCurveSeed is the PDA seed prefix for bonding curve accounts.
const bondingCurveSeed = "bonding-curve"

// ValidMint reports whether s decodes to a 32-byte base58 public key.
func ValidMint(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// BondingCurveAddress derives the bonding curve PDA for a mint.
// Returns "" if the mint is invalid or no off-curve address is found.
func BondingCurveAddress(mint string) string {
	mintBytes, err := base58.Decode(mint)
	if err != nil || len(mintBytes) != 32 {
		return ""
	}
	programID, err := base58.Decode(ProgramID)
	if err != nil {
		return ""
	}

	// Find the first bump seed producing an off-curve address.
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, len(bondingCurveSeed)+32+1+32+21)
		data = append(data, []byte(bondingCurveSeed)...)
		data = append(data, mintBytes...)
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
