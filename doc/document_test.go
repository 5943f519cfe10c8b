package doc

import (
	"testing"
	"unicode"

	"github.com/dekarrin/sturgeon/buffer"
	"github.com/dekarrin/sturgeon/lex"
	"github.com/dekarrin/sturgeon/parse"
	"github.com/dekarrin/sturgeon/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindNum Kind = lex.FirstUserKind + iota
	kindComma
	kindSpace
)

type Kind = lex.Kind

// csvDfa tokenizes runs of digits, single commas, and single spaces (trivia).
type csvDfa struct{}

func (csvDfa) Lookback() int { return 2 }

func (csvDfa) Match(src []rune, offset int) (lex.Kind, int, bool) {
	if offset >= len(src) {
		return 0, 0, false
	}
	r := src[offset]
	switch {
	case unicode.IsDigit(r):
		n := 0
		for offset+n < len(src) && unicode.IsDigit(src[offset+n]) {
			n++
		}
		return kindNum, n, true
	case r == ',':
		return kindComma, 1, true
	case r == ' ':
		return kindSpace, 1, true
	default:
		return 0, 0, false
	}
}

const (
	NodeList parse.NodeKind = iota
	NodeItem
)

func csvGrammar() *parse.Grammar {
	return &parse.Grammar{
		Root:   NodeList,
		Trivia: map[lex.Kind]bool{kindSpace: true},
		Rules: map[parse.NodeKind]*parse.RuleDef{
			NodeList: {
				Kind:     NodeList,
				Leftmost: map[lex.Kind]bool{kindNum: true},
				Body: parse.Seq{Items: []parse.RuleExpr{
					parse.Capture{Name: "first", Item: parse.MatchNode{Kind: NodeItem}},
					parse.Repeat{Item: parse.Seq{Items: []parse.RuleExpr{
						parse.MatchToken{Kind: kindComma},
						parse.Capture{Name: "rest", Item: parse.MatchNode{Kind: NodeItem}},
					}}},
				}},
			},
			NodeItem: {
				Kind:     NodeItem,
				Leftmost: map[lex.Kind]bool{kindNum: true},
				Primary:  true,
				Body:     parse.Capture{Name: "value", Item: parse.MatchToken{Kind: kindNum}},
			},
		},
	}
}

func csvConfig() Config {
	return Config{Dfa: csvDfa{}, Grammar: csvGrammar(), CacheCapacity: 16}
}

func Test_NewMutable_FullParseBuildsTree(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewMutable("1, 2, 3", csvConfig())
	require.Empty(d.Errors())

	root := d.RootNodeRef()
	require.False(root.IsNil())
	assert.Equal(NodeList, d.NodeKind(root))

	children := d.NodeChildren(root)
	require.Len(children, 5, "first item, then (comma, item) per repeat iteration: 1 + 2*2 for three items")
}

func Test_Document_Write_IncrementalReparse(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewMutable("1, 22, 3", csvConfig())
	require.Empty(d.Errors())

	oldFirstItem := d.NodeChildren(d.RootNodeRef())[0].AsNodeRef()
	require.False(oldFirstItem.IsNil())

	// Replace "22" with "444": the edit falls entirely inside the second
	// item, so the first item's cached subtree should be reused wholesale.
	err := d.Write(buffer.Span{Start: 3, End: 5}, "444")
	require.NoError(err)
	require.Empty(d.Errors())

	text, err := d.Substring(buffer.Span{Start: 0, End: d.Len()})
	require.NoError(err)
	assert.Equal("1, 444, 3", text)

	newFirstItem := d.NodeChildren(d.RootNodeRef())[0].AsNodeRef()
	assert.Equal(oldFirstItem, newFirstItem, "untouched preceding item's node identity should survive the edit")
}

func Test_Document_Write_RejectsImmutable(t *testing.T) {
	assert := assert.New(t)

	d := NewImmutable("1, 2", csvConfig())
	err := d.Write(buffer.Span{Start: 0, End: 1}, "9")
	assert.Error(err)
}

func Test_Document_TraverseTree_VisitsAllNodes(t *testing.T) {
	assert := assert.New(t)

	d := NewMutable("1, 2, 3", csvConfig())

	var visited []parse.NodeKind
	d.TraverseTree(Visitor{
		EnterNode: func(n ref.NodeRef) bool {
			visited = append(visited, d.NodeKind(n))
			return true
		},
	})

	assert.Contains(visited, NodeList)
	assert.Contains(visited, NodeItem)
}

func Test_Document_Cursor_FindsTokensTouchingSpan(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewMutable("1, 22, 3", csvConfig())

	c := d.Cursor(buffer.Span{Start: 3, End: 5})
	var kinds []lex.Kind
	for {
		tr, ok := c.Next()
		if !ok {
			break
		}
		tok, ok := d.tokens.Get(tr.Entry)
		require.True(ok)
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(kinds, kindNum)
}

func Test_NewVoidDocument_FlatTreeCoversAllTokens(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	d := NewVoidDocument("1, 22, 3", csvDfa{}, 16)
	require.Empty(d.Errors())

	root := d.RootNodeRef()
	children := d.NodeChildren(root)
	assert.Len(children, 7, "every token, including comma and space trivia, becomes a direct child of the void root")
}
