package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHeading(t *testing.T) {
	nodes := Render("### Heading")
	require.Len(t, nodes, 1)
	assert.Equal(t, KindHeading, nodes[0].Kind)
	assert.Equal(t, "Heading", nodes[0].Text())
}

func TestRenderSubHeadingBeforeHeading(t *testing.T) {
	nodes := Render("#### Sub")
	require.Len(t, nodes, 1)
	assert.Equal(t, KindSubHeading, nodes[0].Kind)
	assert.Equal(t, "Sub", nodes[0].Text())
}

func TestRenderBullets(t *testing.T) {
	nodes := Render("- first\n• second")
	require.Len(t, nodes, 2)
	assert.Equal(t, KindBullet, nodes[0].Kind)
	assert.Equal(t, "first", nodes[0].Text())
	assert.Equal(t, KindBullet, nodes[1].Kind)
	assert.Equal(t, "second", nodes[1].Text())
}

func TestRenderNumberedItemKeepsNumber(t *testing.T) {
	nodes := Render("1. step one")
	require.Len(t, nodes, 1)
	assert.Equal(t, KindNumberedItem, nodes[0].Kind)
	assert.Equal(t, "1. step one", nodes[0].Text())
}

func TestRenderBlankLineIsSpacer(t *testing.T) {
	nodes := Render("para\n\npara")
	require.Len(t, nodes, 3)
	assert.Equal(t, KindParagraph, nodes[0].Kind)
	assert.Equal(t, KindSpacer, nodes[1].Kind)
	assert.Equal(t, KindParagraph, nodes[2].Kind)
}

func TestInlineBold(t *testing.T) {
	nodes := Render("before **bold** after")
	require.Len(t, nodes, 1)

	spans := nodes[0].Spans
	require.Len(t, spans, 3)
	assert.Equal(t, Span{Text: "before "}, spans[0])
	assert.Equal(t, Span{Text: "bold", Bold: true}, spans[1])
	assert.Equal(t, Span{Text: " after"}, spans[2])
}

func TestInlineBoldInHeading(t *testing.T) {
	nodes := Render("#### The **Key** Idea")
	require.Len(t, nodes, 1)
	assert.Equal(t, KindSubHeading, nodes[0].Kind)

	var boldText string
	for _, s := range nodes[0].Spans {
		if s.Bold {
			boldText = s.Text
		}
	}
	assert.Equal(t, "Key", boldText)
}

func TestUnpairedDelimiterStaysLiteral(t *testing.T) {
	nodes := Render("odd **one out")
	require.Len(t, nodes, 1)
	assert.Equal(t, "odd **one out", nodes[0].Text())
	for _, s := range nodes[0].Spans {
		assert.False(t, s.Bold)
	}
}

func TestTrailingDelimiterStaysLiteral(t *testing.T) {
	for _, input := range []string{"ab**", "**"} {
		nodes := Render(input)
		require.Len(t, nodes, 1, input)
		assert.Equal(t, input, nodes[0].Text())
		for _, s := range nodes[0].Spans {
			assert.False(t, s.Bold)
		}
	}
}

func TestScriptTagIsLiteralText(t *testing.T) {
	input := `<script>alert("xss")</script>`
	nodes := Render(input)
	require.Len(t, nodes, 1)
	assert.Equal(t, KindParagraph, nodes[0].Kind)
	assert.Equal(t, input, nodes[0].Text())
}

func TestJavascriptURLIsLiteralText(t *testing.T) {
	input := "[click](javascript:alert(1))"
	nodes := Render(input)
	require.Len(t, nodes, 1)
	assert.Equal(t, KindParagraph, nodes[0].Kind)
	assert.Equal(t, input, nodes[0].Text())
}

func TestRenderMixedDocument(t *testing.T) {
	doc := "### Title\n\n- point\n1. first\ntrailing text"
	nodes := Render(doc)
	require.Len(t, nodes, 5)
	assert.Equal(t, []Kind{
		KindHeading, KindSpacer, KindBullet, KindNumberedItem, KindParagraph,
	}, []Kind{nodes[0].Kind, nodes[1].Kind, nodes[2].Kind, nodes[3].Kind, nodes[4].Kind})
}
