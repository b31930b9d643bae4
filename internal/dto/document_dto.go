package dto

type IngestDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=500"`
	URL     string `json:"url" validate:"required,url"`
	Content string `json:"content" validate:"required"`
}

type IngestDocumentResponse struct {
	URL    string `json:"url"`
	Chunks int    `json:"chunks"`
}

type DocumentStatsResponse struct {
	Chunks int64 `json:"chunks"`
}
