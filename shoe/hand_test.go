package shoe

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestHandBasics(t *testing.T) {
	is := is.New(t)
	h := NewHand(Ten, 6, Ace)
	is.Equal(h.Len(), 3)
	is.Equal(h.At(1), Rank(6))
	is.Equal(h.Sum(), 17)
	is.True(h.HasAce())
	is.True(!h.IsPair())
	is.True(NewHand(8, 8).IsPair())
	is.True(!NewHand(8, 8, 8).IsPair())
	is.Equal(h.String(), "061")
}

func TestHandRemoveKeepsOrder(t *testing.T) {
	is := is.New(t)
	h := NewHand(2, 3, 2, 4)
	is.True(h.Remove(2))
	is.Equal(h.Ranks(), []Rank{3, 2, 4})
	is.True(!h.Remove(9))
	is.Equal(h.Pop(), Rank(4))
	is.Equal(h.Ranks(), []Rank{3, 2})
}

func TestHandCounts(t *testing.T) {
	is := is.New(t)
	a := NewHand(Ace, Ten, 5)
	b := NewHand(5, Ace, Ten)
	is.Equal(a.Counts(), b.Counts())
	is.True(a != b)
}

func TestHandFull(t *testing.T) {
	h := NewHand(2, 2, 2, 2, 2, 2)
	assert.Panics(t, func() { h.Push(3) })
	var empty Hand
	assert.Panics(t, func() { empty.Pop() })
}

func TestParseHand(t *testing.T) {
	is := is.New(t)
	h, err := ParseHand("10")
	is.NoErr(err)
	is.Equal(h.Ranks(), []Rank{Ace, Ten})

	h, err = ParseHand("")
	is.NoErr(err)
	is.Equal(h.Len(), 0)

	_, err = ParseHand("1234567")
	is.True(err != nil)
	_, err = ParseHand("1x")
	is.True(err != nil)
}
