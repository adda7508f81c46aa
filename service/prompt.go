package service

import (
	"regexp"
	"strings"

	"handbookbot-backend/models"
)

// DefaultModel is the completion model used when none is configured
const DefaultModel = "gemini-2.5-flash"

// SystemInstruction is the fixed behavioral policy sent with every completion request
const SystemInstruction = `너는 직원들을 돕는 친절하고 상냥한 AI 동료 '생활백서봇'이야.
- 주어진 사내 규정 문서의 내용만을 바탕으로 질문에 답해줘.
- 항상 친절하고 이해하기 쉽게 설명해주는 게 중요해. 말투는 항상 '~해요', '~니다'체를 사용해줘.
- 만약 문서에 없는 내용을 물어보면, "제가 찾아봤는데, 그 내용은 규정 문서에 나와있지 않네요. 😅" 라고 솔직하고 부드럽게 말해줘.
- 답변의 근거가 되는 규정의 출처(문서명, 조, 항 등)를 명확하게 밝혀줘. 출처는 답변의 맨 마지막 줄에 표기해줘.
- 출처 표기 형식은 아래 규칙을 반드시 따라야 해.
  - 링크가 없는 경우: "출처: 문서명 제 O조 O항"
  - 링크가 있는 경우: "출처: 문서명 제 O조 O항 <strong><a href="링크 주소" target="_blank" rel="noopener noreferrer" style="text-decoration: underline;">[LINK]</a></strong>"
- 중요한 점: 링크의 <a> 태그는 '[LINK]' 텍스트에만 적용하고, '출처: ...' 부분에는 절대 링크를 걸지 마.
- 답변을 꾸밀 때는 <strong> 태그만 사용해서 중요한 부분을 강조할 수 있어. 절대로 ** 와 같은 마크다운은 사용하지 마.
- 목록을 표시해야 할 경우, 각 항목 앞에 하이픈(-)과 공백을 붙여서 일반 텍스트 줄로 만들어줘. 예를 들어, "- 첫 번째 항목". 절대로 <ul>이나 <li> 태그는 사용하지 마.`

// CitationPrefix starts the mandatory final line of every answer
const CitationPrefix = "출처:"

// LinkToken is the only text allowed inside the citation anchor
const LinkToken = "[LINK]"

// AssemblePrompt renders the documents and the question into a completion request.
// The output depends only on its arguments.
func AssemblePrompt(model, question string, docs []models.RegulationDocument) models.CompletionRequest {
	if model == "" {
		model = DefaultModel
	}

	return models.CompletionRequest{
		Model:             model,
		SystemInstruction: SystemInstruction,
		Contents:          "\n[사내 규정 문서]\n" + renderDocuments(docs) + "\n---\n[사용자 질문]\n" + question + "\n",
	}
}

func renderDocuments(docs []models.RegulationDocument) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, renderDocument(doc))
	}
	return strings.Join(blocks, "\n\n")
}

func renderDocument(doc models.RegulationDocument) string {
	var b strings.Builder
	b.WriteString("--- 문서: ")
	b.WriteString(doc.Name)
	if doc.Link != "" {
		b.WriteString(" (링크: ")
		b.WriteString(doc.Link)
		b.WriteString(")")
	}
	b.WriteString(" ---\n")
	b.WriteString(doc.Content)
	return b.String()
}

// Citation is the parsed final line of an answer
type Citation struct {
	Line       string // Full citation line as produced by the model
	Prefix     string // Text before any anchor markup, starting with CitationPrefix
	Link       string // href of the anchor, empty when the line has none
	AnchorText string // Text wrapped by the first anchor
	Anchors    int    // Number of anchors on the line
}

var (
	anchorPattern = regexp.MustCompile(`(?is)<a\s[^>]*>(.*?)</a>`)
	hrefPattern   = regexp.MustCompile(`(?i)href\s*=\s*"([^"]*)"`)
)

// ParseCitation extracts the citation from the last non-empty line of an answer.
// The answer itself is not modified.
func ParseCitation(answer string) (Citation, bool) {
	lines := strings.Split(strings.TrimRight(answer, " \t\r\n"), "\n")
	line := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(line, CitationPrefix) {
		return Citation{}, false
	}

	citation := Citation{Line: line, Prefix: line}

	anchors := anchorPattern.FindAllStringSubmatchIndex(line, -1)
	if len(anchors) == 0 {
		return citation, true
	}
	citation.Anchors = len(anchors)
	loc := anchors[0]

	prefix := strings.TrimSpace(line[:loc[0]])
	citation.Prefix = strings.TrimSpace(strings.TrimSuffix(prefix, "<strong>"))
	citation.AnchorText = line[loc[2]:loc[3]]
	if m := hrefPattern.FindStringSubmatch(line[loc[0]:loc[1]]); m != nil {
		citation.Link = m[1]
	}

	return citation, true
}

// IsWellFormed reports whether the line has at most one anchor, wrapping LinkToken,
// and the prefix carries no link markup
func (c Citation) IsWellFormed() bool {
	if c.Anchors > 1 || strings.Contains(strings.ToLower(c.Prefix), "<a") {
		return false
	}
	if c.Link == "" {
		return c.AnchorText == ""
	}
	return c.AnchorText == LinkToken
}
