package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	appctx "github.com/VATSALVARSHNEY108/boi-mark2/internal/context"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var snapshotTicker *time.Ticker

// Handler handles HTTP and WebSocket requests.
type Handler struct {
	assistant *workflow.Assistant
	store     *appctx.Store
	upgrader  websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(assistant *workflow.Assistant, store *appctx.Store) *Handler {
	return &Handler{
		assistant: assistant,
		store:     store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Command handles text command requests.
func (h *Handler) Command(c *gin.Context) {
	var req struct {
		Command   string `json:"command" binding:"required"`
		Source    string `json:"source"`
		SessionID string `json:"session_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":   "error",
			"response": "command is required",
		})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	resp := h.assistant.Process(c.Request.Context(), req.Command)
	if resp == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":   "error",
			"response": "command is empty",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            commandStatus(resp),
		"session_id":        req.SessionID,
		"response":          resp.Text,
		"mood_hint":         resp.MoodHint,
		"technical_details": technicalDetails(resp),
	})
}

// commandStatus maps a processed response onto the wire status values.
func commandStatus(resp *workflow.Response) string {
	if resp.Result == nil || resp.Result.OverallSuccess {
		return "success"
	}
	return "error"
}

// technicalDetails renders the parsed command and execution result as a
// JSON string for callers that want more than the response text.
func technicalDetails(resp *workflow.Response) string {
	raw, err := json.Marshal(gin.H{
		"command": resp.Command,
		"result":  resp.Result,
	})
	if err != nil {
		return ""
	}
	return string(raw)
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Context exposes the recent conversation state.
func (h *Handler) Context(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"turns":      h.store.Turns(),
		"emotions":   h.store.Emotions(),
		"mood_trend": h.store.MoodTrend(),
	})
}

// Voice handles the voice channel over a WebSocket. Each text frame is
// one transcribed utterance; frames without a leading wake word are
// dropped silently.
func (h *Handler) Voice(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	log.Printf("Voice session %s connected", sessionID)

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Voice session %s read failed: %v", sessionID, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		command, woken := StripWakeWord(string(payload))
		if !woken {
			continue
		}
		if strings.TrimSpace(command) == "" {
			if err := conn.WriteJSON(gin.H{"status": "success", "response": "Yes?"}); err != nil {
				return
			}
			continue
		}

		resp := h.assistant.Process(c.Request.Context(), command)
		if resp == nil {
			continue
		}
		out := gin.H{
			"status":            commandStatus(resp),
			"response":          resp.Text,
			"mood_hint":         resp.MoodHint,
			"technical_details": technicalDetails(resp),
		}
		if err := conn.WriteJSON(out); err != nil {
			log.Printf("Voice session %s write failed: %v", sessionID, err)
			return
		}
	}
}

// StartSnapshots starts a background task that periodically persists the
// conversation context.
func (h *Handler) StartSnapshots(interval time.Duration) {
	log.Printf("Starting context snapshot task (interval: %v)", interval)

	snapshotTicker = time.NewTicker(interval)

	go func() {
		for range snapshotTicker.C {
			if err := h.store.Snapshot(); err != nil {
				log.Printf("Context snapshot failed: %v", err)
			}
		}
	}()
}

// StopSnapshots stops the snapshot task.
func (h *Handler) StopSnapshots() {
	if snapshotTicker != nil {
		snapshotTicker.Stop()
		log.Println("Context snapshot task stopped")
	}
}
