package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBannedWords(t *testing.T) {
	assert := assert.New(t)

	bw := ParseBannedWords("BadWord, other,,  ,badword")
	assert.Equal([]string{"badword", "other"}, bw.Words())
	assert.Equal(2, bw.Len())

	empty := ParseBannedWords("")
	assert.Equal(0, empty.Len())
	assert.Equal("", empty.Match("anything at all"))
}

func TestBannedWordsMatch(t *testing.T) {
	assert := assert.New(t)

	bw := NewBannedWords([]string{"badword", "heck"})

	fixtures := []struct {
		text string
		out  string
	}{
		{out: "", text: ""},
		{out: "", text: "hello there"},
		{out: "badword", text: "this is a badword"},
		{out: "badword", text: "BADWORD!!"},
		{out: "badword", text: "mybadwording"},
		{out: "heck", text: "what the Heck"},
		{out: "heck", text: "checking in"},
		{out: "", text: "bad word"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, bw.Match(fix.text), fix.text)
		assert.Equal(fix.out != "", bw.Contains(fix.text))
	}
}

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	// decomposed "E" + combining acute accent composes to the single rune
	assert.Equal("caf\u00e9", Normalize("CAFE\u0301"))
	assert.Equal("hello", Normalize("HeLLo"))

	bw := NewBannedWords([]string{"caf\u00e9"})
	assert.Equal("caf\u00e9", bw.Match("at the Cafe\u0301 today"))
}
