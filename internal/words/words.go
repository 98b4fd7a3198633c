// Package words supplies the text players type during a session.
package words

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const DefaultCount = 50

//go:embed bank.yaml
var defaultBank []byte

// Bank maps a difficulty label to its vocabulary.
type Bank struct {
	lists map[string][]string
	count int
}

// Default returns the built-in bank with the given session length.
func Default(count int) *Bank {
	b, err := Parse(defaultBank, count)
	if err != nil {
		panic(fmt.Sprintf("words: embedded bank is invalid: %v", err))
	}
	return b
}

// LoadFile reads a YAML bank of the form `difficulty: [word, ...]`.
func LoadFile(path string, count int) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word bank: %w", err)
	}
	return Parse(data, count)
}

func Parse(data []byte, count int) (*Bank, error) {
	var lists map[string][]string
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parsing word bank: %w", err)
	}
	if len(lists[DifficultyEasy]) == 0 {
		return nil, fmt.Errorf("word bank has no %q list", DifficultyEasy)
	}
	if count <= 0 {
		count = DefaultCount
	}
	return &Bank{lists: lists, count: count}, nil
}

// Words returns the bank's configured number of words for difficulty, joined
// by single spaces. Unknown difficulties use the easy list.
func (b *Bank) Words(difficulty string) string {
	return b.WordsN(difficulty, b.count)
}

func (b *Bank) WordsN(difficulty string, n int) string {
	list, ok := b.lists[difficulty]
	if !ok || len(list) == 0 {
		list = b.lists[DifficultyEasy]
	}
	if n <= 0 {
		n = b.count
	}
	picked := make([]string, n)
	for i := range picked {
		picked[i] = list[rand.IntN(len(list))]
	}
	return strings.Join(picked, " ")
}

// Has reports whether the bank defines difficulty.
func (b *Bank) Has(difficulty string) bool {
	return len(b.lists[difficulty]) > 0
}
