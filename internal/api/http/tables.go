package http

import (
	"net/http"
	"strings"

	"github.com/minirel/minirel/internal/engine"
	"github.com/minirel/minirel/pkg/types"
)

// TablesResponse is the response of GET /api/tables.
type TablesResponse struct {
	Tables []engine.TableInfo `json:"tables"`
}

// TablesHandler handles GET /api/tables requests.
type TablesHandler struct {
	db *engine.Database
}

// NewTablesHandler creates a new table listing handler.
func NewTablesHandler(db *engine.Database) *TablesHandler {
	return &TablesHandler{db: db}
}

// ServeHTTP lists every table with its row count.
func (h *TablesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	tables, err := h.db.ListTables()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}
	if tables == nil {
		tables = []engine.TableInfo{}
	}
	writeJSON(w, http.StatusOK, TablesResponse{Tables: tables})
}

// SchemaResponse is the response of GET /api/schema/{table}.
type SchemaResponse struct {
	Success bool               `json:"success"`
	Table   string             `json:"table"`
	Schema  *types.TableSchema `json:"schema"`
}

// SchemasResponse is the response of GET /api/schema.
type SchemasResponse struct {
	Success bool             `json:"success"`
	Schemas []SchemaResponse `json:"schemas"`
}

// SchemaHandler handles GET /api/schema and GET /api/schema/{table}.
type SchemaHandler struct {
	db *engine.Database
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(db *engine.Database) *SchemaHandler {
	return &SchemaHandler{db: db}
}

// ServeHTTP serves one table's schema, or all schemas when no table is
// named in the path.
func (h *SchemaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	table := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/schema"), "/")
	if table == "" {
		h.serveAll(w, requestID)
		return
	}

	schema, err := h.db.Schema(table)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), requestID)
		return
	}
	writeJSON(w, http.StatusOK, SchemaResponse{Success: true, Table: table, Schema: schema})
}

// serveAll lists the schema of every table.
func (h *SchemaHandler) serveAll(w http.ResponseWriter, requestID string) {
	tables, err := h.db.ListTables()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), requestID)
		return
	}

	schemas := make([]SchemaResponse, 0, len(tables))
	for _, info := range tables {
		schema, err := h.db.Schema(info.Name)
		if err != nil {
			continue
		}
		schemas = append(schemas, SchemaResponse{Success: true, Table: info.Name, Schema: schema})
	}
	writeJSON(w, http.StatusOK, SchemasResponse{Success: true, Schemas: schemas})
}
