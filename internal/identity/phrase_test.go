package identity

import (
	"bytes"
	"sort"
	"strings"
	"testing"
)

// Zero-entropy vector from the public wordlist; any compatible client must
// accept it.
const knownValidPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGeneratePhraseShapeAndValidity(t *testing.T) {
	phrase, err := GeneratePhrase()
	if err != nil {
		t.Fatalf("generate phrase failed: %v", err)
	}
	words := strings.Fields(phrase)
	if len(words) != PhraseWordCount {
		t.Fatalf("expected %d words, got %d", PhraseWordCount, len(words))
	}
	if !ValidatePhrase(phrase) {
		t.Fatal("generated phrase must validate")
	}
}

func TestValidatePhraseVectors(t *testing.T) {
	cases := []struct {
		name   string
		phrase string
		want   bool
	}{
		{"known valid", knownValidPhrase, true},
		{"uppercase and spacing variant", "  Abandon ABANDON abandon abandon abandon   abandon abandon abandon abandon abandon abandon About ", true},
		{"wrong word count", "abandon abandon abandon", false},
		{"out of wordlist word", strings.Replace(knownValidPhrase, "about", "zzzzzz", 1), false},
		{"tampered final word breaks checksum", strings.Replace(knownValidPhrase, "about", "abandon", 1), false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		if got := ValidatePhrase(tc.phrase); got != tc.want {
			t.Fatalf("%s: ValidatePhrase = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizePhrase(t *testing.T) {
	got := NormalizePhrase("  Hello   WORLD\tfoo\n")
	if got != "hello world foo" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestPhraseEntropyRoundTrip(t *testing.T) {
	entropy, err := PhraseEntropy(knownValidPhrase)
	if err != nil {
		t.Fatalf("entropy failed: %v", err)
	}
	if len(entropy) != 16 {
		t.Fatalf("expected 16 entropy bytes, got %d", len(entropy))
	}
	if !bytes.Equal(entropy, make([]byte, 16)) {
		t.Fatal("zero-entropy vector must decode to 16 zero bytes")
	}

	if _, err := PhraseEntropy("not a phrase"); err == nil {
		t.Fatal("expected error for invalid phrase")
	}
}

func TestWordAt(t *testing.T) {
	word, err := WordAt(knownValidPhrase, 12)
	if err != nil {
		t.Fatalf("word at 12 failed: %v", err)
	}
	if word != "about" {
		t.Fatalf("expected about, got %q", word)
	}
	if _, err := WordAt(knownValidPhrase, 0); err == nil {
		t.Fatal("expected out of range error for position 0")
	}
	if _, err := WordAt(knownValidPhrase, 13); err == nil {
		t.Fatal("expected out of range error for position 13")
	}
}

func TestQuizPositionsDistinctSorted(t *testing.T) {
	for i := 0; i < 50; i++ {
		positions, err := QuizPositions(3)
		if err != nil {
			t.Fatalf("quiz positions failed: %v", err)
		}
		if len(positions) != 3 {
			t.Fatalf("expected 3 positions, got %d", len(positions))
		}
		if !sort.IntsAreSorted(positions) {
			t.Fatalf("positions must be sorted ascending: %v", positions)
		}
		seen := map[int]struct{}{}
		for _, p := range positions {
			if p < 1 || p > PhraseWordCount {
				t.Fatalf("position %d out of [1,%d]", p, PhraseWordCount)
			}
			if _, dup := seen[p]; dup {
				t.Fatalf("duplicate position %d in %v", p, positions)
			}
			seen[p] = struct{}{}
		}
	}
	if _, err := QuizPositions(0); err == nil {
		t.Fatal("expected out of range error for count 0")
	}
	if _, err := QuizPositions(13); err == nil {
		t.Fatal("expected out of range error for count 13")
	}
}
