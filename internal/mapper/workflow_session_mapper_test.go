package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/internal/entity"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"
)

func TestWorkflowSessionMapperRoundTrip(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(4 * time.Second)
	m := NewWorkflowSessionMapper()

	rec := pipeline.AuditRecord{
		SessionID:    "s1",
		WorkflowName: pipeline.WorkflowName,
		Status:       store.SessionCompleted,
		StartedAt:    started,
		CompletedAt:  ended,
		Metadata: map[string]interface{}{
			"query":             "best ramen in tokyo",
			"detected_language": "en",
			"stage_log": []store.StageResult{
				{Stage: "synthesis", Agent: "synthesis_agent", Status: store.StageCompleted, StartedAt: started, EndedAt: ended},
			},
		},
		Result: &pipeline.Result{SessionID: "s1", Answer: "Try Fuunji."},
	}

	ws, err := m.FromAuditRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, "best ramen in tokyo", ws.Query)
	assert.Equal(t, "en", ws.DetectedLanguage)

	row, err := m.ToModel(ws)
	require.NoError(t, err)
	back, err := m.ToEntity(row)
	require.NoError(t, err)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(back.Result, &result))
	assert.Equal(t, "Try Fuunji.", result.Answer)

	session := m.ToSession(back)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, store.SessionCompleted, session.Status)
	require.NotNil(t, session.CompletedAt)
	assert.True(t, ended.Equal(*session.CompletedAt))
	require.Len(t, session.StageLog, 1)
	assert.Equal(t, "synthesis", session.StageLog[0].Stage)
}

func TestWorkflowSessionMapperFailedRun(t *testing.T) {
	ws, err := NewWorkflowSessionMapper().FromAuditRecord(pipeline.AuditRecord{
		SessionID: "s2",
		Status:    store.SessionFailed,
		Error:     "phase synthesis: model offline",
	})

	require.NoError(t, err)
	assert.Nil(t, ws.Result)
	assert.Equal(t, "failed", ws.Status)
	assert.Equal(t, "phase synthesis: model offline", ws.ErrorMessage)
}

func TestDocumentMapperToRetrieval(t *testing.T) {
	got := NewDocumentMapper().ToRetrieval([]*entity.ScoredDocument{
		{Document: &entity.Document{Title: "Guide", Url: "https://kb.example/guide", Content: "text"}, Similarity: 0.8},
		nil,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Guide", got[0].Title)
	assert.Equal(t, 0.8, got[0].Similarity)
}
