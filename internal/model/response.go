package model

// Request and response bodies for the REST facade.

type AddDocumentsRequest struct {
	FilePath         string `json:"file_path,omitempty"`
	Content          string `json:"content,omitempty"`
	Collection       string `json:"collection" binding:"required"`
	EmbeddingService string `json:"embedding_service" binding:"required"`
	ChunkSize        int    `json:"chunk_size,omitempty"`
	ChunkOverlap     int    `json:"chunk_overlap,omitempty"`
}

type AddDocumentsResponse struct {
	Collection        string   `json:"collection"`
	ChunksWritten     int      `json:"chunks_written"`
	CollectionCreated bool     `json:"collection_created"`
	Warnings          []string `json:"warnings,omitempty"`
	Success           bool     `json:"success"`
}

type SearchRequest struct {
	Query            string `json:"query" binding:"required"`
	Collection       string `json:"collection" binding:"required"`
	EmbeddingService string `json:"embedding_service" binding:"required"`
	Limit            int    `json:"limit,omitempty"`
}

type SearchResponse struct {
	Collection string `json:"collection"`
	Results    string `json:"results"`
	Success    bool   `json:"success"`
}

type ListCollectionsResponse struct {
	Collections []string `json:"collections"`
}

type DeleteCollectionResponse struct {
	Collection string `json:"collection"`
	Success    bool   `json:"success"`
}
