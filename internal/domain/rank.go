package domain

// Rank is a 1-5 ballot value. Votes are stored as ranks; the chat
// gateway translates them to and from keycap glyphs.
type Rank int

const (
	RankOne Rank = iota + 1
	RankTwo
	RankThree
	RankFour
	RankFive
)

// Fully-qualified keycap forms (digit + U+FE0F + U+20E3). Outbound
// reaction calls must use these: the platform keys unicode reactions
// under the fully-qualified emoji and rejects the bare form.
var rankGlyphs = map[Rank]string{
	RankOne:   "1️⃣",
	RankTwo:   "2️⃣",
	RankThree: "3️⃣",
	RankFour:  "4️⃣",
	RankFive:  "5️⃣",
}

var glyphRanks = func() map[string]Rank {
	m := make(map[string]Rank, len(rankGlyphs))
	for r, g := range rankGlyphs {
		m[normalizeGlyph(g)] = r
	}
	return m
}()

func (r Rank) Valid() bool {
	return r >= RankOne && r <= RankFive
}

// Glyph returns the keycap emoji for the rank, or "" for an invalid
// rank.
func (r Rank) Glyph() string {
	return rankGlyphs[r]
}

// RankFromGlyph maps a reaction glyph back to its rank. Discord
// reports keycap emoji both with and without the variation selector,
// so both forms are normalized before matching.
func RankFromGlyph(glyph string) (Rank, bool) {
	r, ok := glyphRanks[normalizeGlyph(glyph)]
	return r, ok
}

// AllRanks lists the five ranks in ascending order.
func AllRanks() []Rank {
	return []Rank{RankOne, RankTwo, RankThree, RankFour, RankFive}
}

func normalizeGlyph(glyph string) string {
	out := make([]rune, 0, len(glyph))
	for _, r := range glyph {
		if r == 0xfe0f { // variation selector-16
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
