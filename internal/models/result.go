package models

// RetrieveResponse is the response for a retrieval request.
type RetrieveResponse struct {
	Results   []RetrievedChunk `json:"results"`
	Total     int              `json:"total"`
	QueryTime int64            `json:"query_time_ms"`
	Query     string           `json:"query"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Fragments       int `json:"fragments"`
	DocumentsKept   int `json:"documents_kept"`
	DocumentsNoText int `json:"documents_no_text"`
	DocumentsDupes  int `json:"documents_duplicate"`
	ChunksProduced  int `json:"chunks_produced"`
	ChunksExactDup  int `json:"chunks_exact_duplicate"`
	ChunksNearDup   int `json:"chunks_near_duplicate"`
	ChunksIndexed   int `json:"chunks_indexed"`
}
