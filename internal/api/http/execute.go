package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/minirel/minirel/internal/engine"
)

// ExecuteRequest is the body of POST /api/execute.
type ExecuteRequest struct {
	SQL string `json:"sql"`
}

// ExecuteResponse is the uniform response for executed statements.
type ExecuteResponse struct {
	Success   bool                     `json:"success"`
	Data      []map[string]interface{} `json:"data"`
	Rowcount  int                      `json:"rowcount"`
	Columns   []string                 `json:"columns,omitempty"`
	RequestID string                   `json:"request_id,omitempty"`
}

// ExecuteHandler handles POST /api/execute requests.
type ExecuteHandler struct {
	db *engine.Database
}

// NewExecuteHandler creates a new execute handler.
func NewExecuteHandler(db *engine.Database) *ExecuteHandler {
	return &ExecuteHandler{db: db}
}

// ServeHTTP executes one SQL statement.
func (h *ExecuteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}
	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		writeError(w, http.StatusBadRequest, "no SQL provided", requestID)
		return
	}

	result, err := h.db.Execute(sql)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{
		Success:   true,
		Data:      result.Rows,
		Rowcount:  result.Rowcount,
		Columns:   result.Columns,
		RequestID: requestID,
	})
}

// BatchRequest is the body of POST /api/batch.
type BatchRequest struct {
	Queries []string `json:"queries"`
}

// BatchResult is the per-statement outcome in a batch response.
type BatchResult struct {
	SQL      string `json:"sql"`
	Success  bool   `json:"success"`
	Rowcount int    `json:"rowcount,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchResponse is the response of POST /api/batch.
type BatchResponse struct {
	Success   bool          `json:"success"`
	Results   []BatchResult `json:"results"`
	RequestID string        `json:"request_id,omitempty"`
}

// BatchHandler handles POST /api/batch requests: each statement executes
// independently and failures do not abort the rest of the batch.
type BatchHandler struct {
	db *engine.Database
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(db *engine.Database) *BatchHandler {
	return &BatchHandler{db: db}
}

// ServeHTTP executes a list of SQL statements.
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "no queries provided", requestID)
		return
	}

	results := make([]BatchResult, 0, len(req.Queries))
	for _, sql := range req.Queries {
		result, err := h.db.Execute(strings.TrimSpace(sql))
		if err != nil {
			results = append(results, BatchResult{SQL: sql, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{SQL: sql, Success: true, Rowcount: result.Rowcount})
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Success:   true,
		Results:   results,
		RequestID: requestID,
	})
}
