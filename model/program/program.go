// Package program defines the instruction set and the line-oriented binary
// program format: the instruction word count followed by that many decimal
// words, one per line.
package program

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/viant/fairsim/model/memory"
	"github.com/viant/parsly"
)

// ErrMalformed is returned when a program stream cannot be decoded.
var ErrMalformed = errors.New("program: malformed")

// Program represents a decoded program image.
type Program struct {
	Words []int
}

// Len returns the number of instruction words.
func (p *Program) Len() int {
	return len(p.Words)
}

// New creates a program from words.
func New(words ...int) *Program {
	return &Program{Words: words}
}

// Decode reads the word count and then exactly that many words. Content after
// the last word is not read.
func Decode(data []byte) (*Program, error) {
	cursor := parsly.NewCursor("", data, 0)
	count, err := nextWord(cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to read instruction count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative instruction count %d", ErrMalformed, count)
	}
	if count > memory.Size {
		return nil, fmt.Errorf("%w: instruction count %d exceeds memory size %d", ErrMalformed, count, memory.Size)
	}
	words := make([]int, count)
	for i := range words {
		if words[i], err = nextWord(cursor); err != nil {
			return nil, fmt.Errorf("failed to read word %d of %d: %w", i+1, count, err)
		}
	}
	return &Program{Words: words}, nil
}

func nextWord(cursor *parsly.Cursor) (int, error) {
	matched := cursor.MatchAfterOptional(whitespaceToken, integerToken)
	if matched.Code != integerToken.Code {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, cursor.NewError(integerToken))
	}
	text := matched.Text(cursor)
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, text, err)
	}
	return value, nil
}

// Encode renders the program in the line-oriented format consumed by Decode.
func Encode(p *Program) []byte {
	buf := bytes.Buffer{}
	buf.WriteString(strconv.Itoa(len(p.Words)))
	buf.WriteByte('\n')
	for _, word := range p.Words {
		buf.WriteString(strconv.Itoa(word))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
