package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	// PhraseWordCount is fixed: 128 entropy bits plus the BIP-39 checksum
	// nibble map to exactly 12 words.
	PhraseWordCount   = 12
	phraseEntropyBits = 128
)

var (
	ErrInvalidPhrase = errors.New("invalid recovery phrase")
	ErrOutOfRange    = errors.New("position out of range")
)

// GeneratePhrase draws 128 bits of entropy and encodes them as a 12-word
// phrase from the BIP-39 English wordlist. The phrase is the only way back
// to a lost identity key and is never persisted server-side.
func GeneratePhrase() (string, error) {
	entropy, err := bip39.NewEntropy(phraseEntropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// NormalizePhrase maps user-entered variants (casing, stray whitespace) to
// the canonical form used for validation, derivation and word lookup.
func NormalizePhrase(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}

// ValidatePhrase reports whether the phrase is exactly 12 in-list words with
// a matching checksum. Malformed input returns false, never an error.
func ValidatePhrase(phrase string) bool {
	normalized := NormalizePhrase(phrase)
	if len(strings.Fields(normalized)) != PhraseWordCount {
		return false
	}
	return bip39.IsMnemonicValid(normalized)
}

// PhraseEntropy recovers the original 16 entropy bytes, independent of the
// checksum bits.
func PhraseEntropy(phrase string) ([]byte, error) {
	normalized := NormalizePhrase(phrase)
	if !ValidatePhrase(normalized) {
		return nil, ErrInvalidPhrase
	}
	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return nil, ErrInvalidPhrase
	}
	return entropy, nil
}

// WordAt returns the word at a 1-based position in [1,12].
func WordAt(phrase string, position int) (string, error) {
	if position < 1 || position > PhraseWordCount {
		return "", fmt.Errorf("%w: word position %d", ErrOutOfRange, position)
	}
	words := strings.Fields(NormalizePhrase(phrase))
	if len(words) != PhraseWordCount {
		return "", ErrInvalidPhrase
	}
	return words[position-1], nil
}

// QuizPositions picks count distinct positions in [1,12], sorted ascending.
// Callers build a "confirm you wrote this down" challenge from them.
func QuizPositions(count int) ([]int, error) {
	if count < 1 || count > PhraseWordCount {
		return nil, fmt.Errorf("%w: quiz count %d", ErrOutOfRange, count)
	}
	picked := make(map[int]struct{}, count)
	for len(picked) < count {
		n, err := rand.Int(rand.Reader, big.NewInt(PhraseWordCount))
		if err != nil {
			return nil, err
		}
		picked[int(n.Int64())+1] = struct{}{}
	}
	positions := make([]int, 0, count)
	for p := range picked {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions, nil
}
