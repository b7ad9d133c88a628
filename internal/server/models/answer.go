package models

// IndexResult acknowledges that the retrieval service accepted a document
// for indexing.
type IndexResult struct {
	OK     bool   `json:"ok"`
	Output string `json:"output"`
}

// AnswerResult is the retrieval service's reply to a question. PageContent
// and Pages are passed through as received; their lengths are not required
// to match.
type AnswerResult struct {
	OK          bool     `json:"ok"`
	Output      string   `json:"output"`
	PageContent []string `json:"page_content"`
	Pages       []int    `json:"pages"`
}
