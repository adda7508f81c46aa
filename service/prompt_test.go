package service

import (
	"strings"
	"testing"

	"handbookbot-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblePromptIsDeterministic(t *testing.T) {
	docs := []models.RegulationDocument{
		{ID: "1", Name: "휴가규정.txt", Content: "제1조 연차는 15일이다."},
		{ID: "2", Name: "복무규정.txt", Content: "제1조 출근은 9시이다.", Link: "https://x/doc.pdf"},
	}

	first := AssemblePrompt("", "연차는 며칠이야?", docs)
	second := AssemblePrompt("", "연차는 며칠이야?", docs)

	assert.Equal(t, first, second)
	assert.Equal(t, DefaultModel, first.Model)
	assert.Equal(t, SystemInstruction, first.SystemInstruction)
}

func TestAssemblePromptLayout(t *testing.T) {
	docs := []models.RegulationDocument{
		{ID: "1", Name: "휴가규정.txt", Content: "제1조 연차는 15일이다."},
		{ID: "2", Name: "복무규정.txt", Content: "제1조 출근은 9시이다.", Link: "https://x/doc.pdf"},
	}

	req := AssemblePrompt("gemini-test", "연차는 며칠이야?", docs)

	want := "\n[사내 규정 문서]\n" +
		"--- 문서: 휴가규정.txt ---\n제1조 연차는 15일이다.\n\n" +
		"--- 문서: 복무규정.txt (링크: https://x/doc.pdf) ---\n제1조 출근은 9시이다.\n" +
		"---\n[사용자 질문]\n연차는 며칠이야?\n"
	assert.Equal(t, want, req.Contents)
	assert.Equal(t, "gemini-test", req.Model)
}

func TestAssemblePromptKeepsStoreOrder(t *testing.T) {
	docs := []models.RegulationDocument{
		{Name: "z.txt", Content: "z"},
		{Name: "a.txt", Content: "a"},
	}

	req := AssemblePrompt("", "q", docs)

	assert.Less(t, strings.Index(req.Contents, "z.txt"), strings.Index(req.Contents, "a.txt"))
}

func TestSystemInstructionPolicy(t *testing.T) {
	assert.Contains(t, SystemInstruction, "생활백서봇")
	assert.Contains(t, SystemInstruction, "절대로 ** 와 같은 마크다운은 사용하지 마")
	assert.Contains(t, SystemInstruction, `"출처: 문서명 제 O조 O항"`)
	assert.Contains(t, SystemInstruction, ">[LINK]</a></strong>")
	assert.Contains(t, SystemInstruction, "'[LINK]' 텍스트에만 적용")
}

func TestParseCitationWithoutLink(t *testing.T) {
	answer := "연차는 <strong>15일</strong>이에요.\n출처: 휴가규정.txt 제 1조\n"

	citation, ok := ParseCitation(answer)

	require.True(t, ok)
	assert.Equal(t, "출처: 휴가규정.txt 제 1조", citation.Prefix)
	assert.Empty(t, citation.Link)
	assert.True(t, citation.IsWellFormed())
}

func TestParseCitationWithLink(t *testing.T) {
	answer := "연차는 15일이에요.\n출처: 휴가규정.txt 제 1조 <strong><a href=\"https://x/doc.pdf\" target=\"_blank\" rel=\"noopener noreferrer\" style=\"text-decoration: underline;\">[LINK]</a></strong>"

	citation, ok := ParseCitation(answer)

	require.True(t, ok)
	assert.Equal(t, "출처: 휴가규정.txt 제 1조", citation.Prefix)
	assert.Equal(t, "https://x/doc.pdf", citation.Link)
	assert.Equal(t, LinkToken, citation.AnchorText)
	assert.True(t, citation.IsWellFormed())
}

func TestParseCitationRejectsAnchoredPrefix(t *testing.T) {
	answer := "본문\n<a href=\"https://x/doc.pdf\">출처: 휴가규정.txt</a>"
	_, ok := ParseCitation(answer)
	assert.False(t, ok)

	for _, answer := range []string{
		"본문\n출처: <a href=\"https://x/doc.pdf\">휴가규정.txt</a>",
		"본문\n출처: <A HREF=\"https://x/doc.pdf\">휴가규정.txt</A>",
		"본문\n출처: a <a href=\"https://x/doc.pdf\">[LINK]</a> <a href=\"https://x/other.pdf\">문서</a>",
	} {
		citation, ok := ParseCitation(answer)
		require.True(t, ok, answer)
		assert.False(t, citation.IsWellFormed(), answer)
	}
}

func TestParseCitationUppercaseAnchor(t *testing.T) {
	citation, ok := ParseCitation("본문\n출처: 휴가규정.txt 제 1조 <A HREF=\"https://x/doc.pdf\">[LINK]</A>")
	require.True(t, ok)
	assert.Equal(t, "https://x/doc.pdf", citation.Link)
	assert.Equal(t, 1, citation.Anchors)
	assert.True(t, citation.IsWellFormed())
}

func TestParseCitationMissing(t *testing.T) {
	_, ok := ParseCitation("제가 찾아봤는데, 그 내용은 규정 문서에 나와있지 않네요. 😅")
	assert.False(t, ok)

	_, ok = ParseCitation("")
	assert.False(t, ok)
}
