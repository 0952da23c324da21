package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"reelchat-backend/internal/genres"
	"reelchat-backend/internal/model"
	"reelchat-backend/internal/service"
	"reelchat-backend/internal/utils"
	"reelchat-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
	catalog     *genres.Catalog
}

func NewChatHandler(chatService *service.ChatService, catalog *genres.Catalog) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		catalog:     catalog,
	}
}

// StreamChat handles a free-text chat request and streams the paced
// assistant turn over SSE.
func (h *ChatHandler) StreamChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respChan, errChan := h.chatService.Ask(req.SessionID, req.Message)
	h.streamTurn(c, respChan, errChan)
}

// StreamMoodChat handles a structured mood request over the same SSE
// protocol.
func (h *ChatHandler) StreamMoodChat(c *gin.Context) {
	var req model.MoodChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respChan, errChan := h.chatService.AskMood(req.SessionID, req)
	h.streamTurn(c, respChan, errChan)
}

// streamTurn drains the service channels into SSE events: status, then
// cumulative message events, then a results event from the final chunk.
func (h *ChatHandler) streamTurn(c *gin.Context, respChan <-chan model.ChatChunk, errChan <-chan error) {
	sseWriter := utils.NewSSEWriter(c.Writer)

	startData, _ := json.Marshal(gin.H{
		"type":      "processing_start",
		"timestamp": time.Now().Unix(),
	})
	sseWriter.Write("status", string(startData))

	ctx := c.Request.Context()

	for {
		select {
		case chunk, ok := <-respChan:
			if !ok {
				// A rejected submission closes both channels at once; report
				// the error rather than a clean completion.
				select {
				case err, open := <-errChan:
					if open && err != nil {
						errorData, _ := json.Marshal(gin.H{
							"error":     err.Error(),
							"type":      errorType(err),
							"timestamp": time.Now().Unix(),
						})
						sseWriter.Write("error", string(errorData))
						sseWriter.Close()
						return
					}
				default:
				}
				completeData, _ := json.Marshal(gin.H{
					"type":      "processing_complete",
					"timestamp": time.Now().Unix(),
				})
				sseWriter.Write("status", string(completeData))
				sseWriter.Close()
				return
			}

			if chunk.Done {
				results := model.ChatResults{
					SessionID:    chunk.SessionID,
					TurnID:       chunk.TurnID,
					Items:        chunk.Results,
					Actors:       chunk.Actors,
					TotalResults: chunk.TotalResults,
				}
				data, err := json.Marshal(results)
				if err != nil {
					logger.Errorf("Failed to marshal results: %v", err)
					continue
				}
				if err := sseWriter.Write("results", string(data)); err != nil {
					logger.Errorf("Failed to write SSE results: %v", err)
					return
				}
				continue
			}

			data, err := json.Marshal(chunk)
			if err != nil {
				logger.Errorf("Failed to marshal chunk: %v", err)
				continue
			}
			if err := sseWriter.Write("message", string(data)); err != nil {
				logger.Errorf("Failed to write SSE: %v", err)
				return
			}

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				errorData, _ := json.Marshal(gin.H{
					"error":     err.Error(),
					"type":      errorType(err),
					"timestamp": time.Now().Unix(),
				})
				sseWriter.Write("error", string(errorData))
				sseWriter.Close()
				return
			}

		case <-ctx.Done():
			sseWriter.Close()
			return
		}
	}
}

func errorType(err error) string {
	switch err {
	case service.ErrBusy:
		return "busy"
	case service.ErrEmptyQuery, service.ErrNoMood:
		return "input_rejected"
	default:
		return "service_error"
	}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Title = ""
	}

	session, err := h.chatService.CreateSession(req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.chatService.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SessionResponse{
		SessionID: session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		TurnCount: len(session.Turns),
	})
}

func (h *ChatHandler) GetTurns(c *gin.Context) {
	sessionID := c.Param("session_id")

	turns, err := h.chatService.GetSessionTurns(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"turns":      turns,
	})
}

func (h *ChatHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.chatService.GetAllSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// ClearSession empties a session's history, canceling any in-flight request
// first.
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.ClearSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session cleared successfully"})
}

func (h *ChatHandler) GetGenres(c *gin.Context) {
	all := h.catalog.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	c.JSON(http.StatusOK, gin.H{"genres": all})
}

func (h *ChatHandler) GetTrending(c *gin.Context) {
	mediaType := c.DefaultQuery("media_type", "all")
	timeWindow := c.DefaultQuery("time_window", "week")

	results, err := h.chatService.Trending(c.Request.Context(), mediaType, timeWindow)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *ChatHandler) GetPopular(c *gin.Context) {
	mediaType := c.DefaultQuery("media_type", "all")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	results, err := h.chatService.Popular(c.Request.Context(), mediaType, page)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}
