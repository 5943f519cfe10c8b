package parse

import (
	"os"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commaListFixture is the shape testdata/comma_list.toml decodes into.
// loadCommaListFixture builds listGrammar()'s comma-list shape (one leading
// item, then repeated separator+item) and takes only item_primary from the
// file; the node and token names are decoded but not used.
type commaListFixture struct {
	RootNode       string `toml:"root_node"`
	ItemNode       string `toml:"item_node"`
	ItemPrimary    bool   `toml:"item_primary"`
	ItemToken      string `toml:"item_token"`
	SeparatorToken string `toml:"separator_token"`
}

func loadCommaListFixture(t *testing.T, path string) (*Grammar, lex.Kind, lex.Kind) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f commaListFixture
	require.NoError(t, toml.Unmarshal(data, &f))

	itemTok := lex.FirstUserKind
	sepTok := lex.FirstUserKind + 1

	const (
		fixtureNodeList NodeKind = iota
		fixtureNodeItem
	)

	g := &Grammar{
		Root: fixtureNodeList,
		Rules: map[NodeKind]*RuleDef{
			fixtureNodeList: {
				Kind:     fixtureNodeList,
				Leftmost: map[lex.Kind]bool{itemTok: true},
				Body: Seq{Items: []RuleExpr{
					Capture{Name: "first", Item: MatchNode{Kind: fixtureNodeItem}},
					Repeat{Item: Seq{Items: []RuleExpr{
						MatchToken{Kind: sepTok},
						Capture{Name: "rest", Item: MatchNode{Kind: fixtureNodeItem}},
					}}},
				}},
			},
			fixtureNodeItem: {
				Kind:     fixtureNodeItem,
				Leftmost: map[lex.Kind]bool{itemTok: true},
				Primary:  f.ItemPrimary,
				Body:     Capture{Name: "value", Item: MatchToken{Kind: itemTok}},
			},
		},
	}
	return g, itemTok, sepTok
}

func Test_Engine_Parse_FromTomlFixture(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, itemTok, sepTok := loadCommaListFixture(t, "testdata/comma_list.toml")

	toks := []lex.Token{
		{Kind: itemTok, Start: 0, Length: 1},
		{Kind: sepTok, Start: 1, Length: 1},
		{Kind: itemTok, Start: 2, Length: 1},
	}

	b := newFakeBuilder(toks)
	eng := NewEngine(g, 16)
	tree := eng.Parse(NewTokenSource(toks), b)

	require.Empty(tree.Errors)
	root := b.node(tree.Root)
	assert.Equal(g.Root, root.kind)
	assert.Equal(3, root.length)

	rest, ok := root.captures["rest"].([]ref.NodeRef)
	require.True(ok)
	assert.Len(rest, 1)
}
