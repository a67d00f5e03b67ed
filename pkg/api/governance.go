package api

import (
	"github.com/syncflow/syncflow/internal/govsrv/governance"
)

// SearchTablesRsp answers a keyword search. When the query holds no usable
// keyword the message explains the empty result set.
type SearchTablesRsp struct {
	Query   string                    `json:"query"`
	Keyword string                    `json:"keyword,omitempty"`
	Results []governance.SearchResult `json:"results"`
	Count   int                       `json:"count"`
	Message string                    `json:"message,omitempty"`
}

type UndocumentedTablesRsp struct {
	Tables []governance.UndocumentedTable `json:"tables"`
	Count  int                            `json:"count"`
}

type HighRiskTablesRsp struct {
	Tables []governance.HighRiskTable `json:"tables"`
	Count  int                        `json:"count"`
}

type SchemaDocumentationRsp struct {
	Schemas []governance.SchemaDocumentation `json:"schemas"`
	Count   int                              `json:"count"`
}

// TriggerSyncRsp acknowledges an on-demand sync request. Triggered is false
// when a run was already pending; the pending run covers the request.
type TriggerSyncRsp struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// FeedbackReq is operator feedback on governance results. Only the type and
// text are required; run_id ties feedback to a specific sync run.
type FeedbackReq struct {
	RunID        string         `json:"run_id,omitempty"`
	FeedbackType string         `json:"feedback_type"`
	FeedbackText string         `json:"feedback_text"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type FeedbackRsp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
