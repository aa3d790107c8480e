package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/minirel/minirel/internal/engine"
)

// wsCommand is one inbound websocket frame.
type wsCommand struct {
	SQL string `json:"sql"`
}

// wsResult is one outbound websocket frame, mirroring ExecuteResponse.
type wsResult struct {
	Success  bool                     `json:"success"`
	Data     []map[string]interface{} `json:"data,omitempty"`
	Rowcount int                      `json:"rowcount"`
	Error    string                   `json:"error,omitempty"`
}

// WebsocketHandler handles GET /ws: a socket REPL that executes one SQL
// statement per frame.
type WebsocketHandler struct {
	db       *engine.Database
	upgrader websocket.Upgrader
}

// NewWebsocketHandler creates a new websocket handler.
func NewWebsocketHandler(db *engine.Database) *WebsocketHandler {
	return &WebsocketHandler{
		db: db,
		upgrader: websocket.Upgrader{
			// The façade carries no authentication; origin checks are the
			// deployment's concern.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and loops over execute frames.
func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		sql := strings.TrimSpace(cmd.SQL)
		if sql == "" {
			if err := conn.WriteJSON(wsResult{Error: "no SQL provided"}); err != nil {
				return
			}
			continue
		}

		result, execErr := h.db.Execute(sql)
		var out wsResult
		if execErr != nil {
			out = wsResult{Error: execErr.Error()}
		} else {
			out = wsResult{Success: true, Data: result.Rows, Rowcount: result.Rowcount}
		}
		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

// NewRouter builds the API mux with the default middleware chain applied.
func NewRouter(db *engine.Database) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/execute", NewExecuteHandler(db))
	mux.Handle("/api/batch", NewBatchHandler(db))
	mux.Handle("/api/tables", NewTablesHandler(db))
	mux.Handle("/api/schema", NewSchemaHandler(db))
	mux.Handle("/api/schema/", NewSchemaHandler(db))
	mux.Handle("/ws", NewWebsocketHandler(db))
	return DefaultMiddleware()(mux)
}
