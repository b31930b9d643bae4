package mapper

import (
	"encoding/json"
	"time"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/model"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"

	"gorm.io/datatypes"
)

type WorkflowSessionMapper struct{}

func NewWorkflowSessionMapper() *WorkflowSessionMapper {
	return &WorkflowSessionMapper{}
}

// FromAuditRecord builds the row for one finished run.
func (m *WorkflowSessionMapper) FromAuditRecord(rec pipeline.AuditRecord) (*entity.WorkflowSession, error) {
	var result json.RawMessage
	if rec.Result != nil {
		raw, err := json.Marshal(rec.Result)
		if err != nil {
			return nil, err
		}
		result = raw
	}

	completedAt := rec.CompletedAt
	ws := &entity.WorkflowSession{
		SessionId:    rec.SessionID,
		WorkflowName: rec.WorkflowName,
		Status:       string(rec.Status),
		StartedAt:    rec.StartedAt,
		CompletedAt:  &completedAt,
		Metadata:     rec.Metadata,
		Result:       result,
		ErrorMessage: rec.Error,
	}
	if q, ok := rec.Metadata["query"].(string); ok {
		ws.Query = q
	}
	if lang, ok := rec.Metadata["detected_language"].(string); ok {
		ws.DetectedLanguage = lang
	}
	return ws, nil
}

func (m *WorkflowSessionMapper) ToModel(ws *entity.WorkflowSession) (*model.WorkflowSession, error) {
	if ws == nil {
		return nil, nil
	}
	var metadata datatypes.JSON
	if ws.Metadata != nil {
		raw, err := json.Marshal(ws.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = raw
	}
	return &model.WorkflowSession{
		Id:               ws.Id,
		SessionId:        ws.SessionId,
		WorkflowName:     ws.WorkflowName,
		Status:           ws.Status,
		Query:            ws.Query,
		DetectedLanguage: ws.DetectedLanguage,
		StartedAt:        ws.StartedAt,
		CompletedAt:      ws.CompletedAt,
		Metadata:         metadata,
		Result:           datatypes.JSON(ws.Result),
		ErrorMessage:     ws.ErrorMessage,
		CreatedAt:        ws.CreatedAt,
	}, nil
}

func (m *WorkflowSessionMapper) ToEntity(row *model.WorkflowSession) (*entity.WorkflowSession, error) {
	if row == nil {
		return nil, nil
	}
	var metadata map[string]interface{}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, err
		}
	}
	var updatedAt *time.Time
	if !row.UpdatedAt.IsZero() {
		t := row.UpdatedAt
		updatedAt = &t
	}
	return &entity.WorkflowSession{
		Id:               row.Id,
		SessionId:        row.SessionId,
		WorkflowName:     row.WorkflowName,
		Status:           row.Status,
		Query:            row.Query,
		DetectedLanguage: row.DetectedLanguage,
		StartedAt:        row.StartedAt,
		CompletedAt:      row.CompletedAt,
		Metadata:         metadata,
		Result:           json.RawMessage(row.Result),
		ErrorMessage:     row.ErrorMessage,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        updatedAt,
	}, nil
}

// ToSession rebuilds a session snapshot from an audit row. The stage log is
// read back from the metadata written by the pipeline.
func (m *WorkflowSessionMapper) ToSession(ws *entity.WorkflowSession) *store.Session {
	if ws == nil {
		return nil
	}
	s := &store.Session{
		ID:               ws.SessionId,
		Query:            ws.Query,
		StartedAt:        ws.StartedAt,
		CompletedAt:      ws.CompletedAt,
		DetectedLanguage: ws.DetectedLanguage,
		Status:           store.SessionStatus(ws.Status),
	}
	if raw, ok := ws.Metadata["stage_log"]; ok {
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &s.StageLog)
		}
	}
	return s
}
