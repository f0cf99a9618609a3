package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linklytics/auth"
	"linklytics/models"
	"linklytics/services"
)

// URLHandler serves the shorten / redirect / analytics routes. The
// visit channel decouples the redirect response from recording: the
// handler only enqueues and never waits.
type URLHandler struct {
	links       *services.LinkService
	analytics   *services.AnalyticsService
	visitEvents chan<- models.VisitEvent
	log         *zap.Logger
}

func NewURLHandler(links *services.LinkService, analytics *services.AnalyticsService, visitEvents chan<- models.VisitEvent, log *zap.Logger) *URLHandler {
	return &URLHandler{
		links:       links,
		analytics:   analytics,
		visitEvents: visitEvents,
		log:         log,
	}
}

type ShortenRequest struct {
	LongURL     string `json:"longUrl" binding:"required,url"`
	CustomAlias string `json:"customAlias"`
	Topic       string `json:"topic"`
}

func (h *URLHandler) Shorten(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.links.CreateShortLink(c.Request.Context(), userID, req.LongURL, req.CustomAlias, req.Topic)
	if err != nil {
		if errors.Is(err, services.ErrAliasTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Alias already in use"})
			return
		}
		if errors.Is(err, services.ErrInvalidTopic) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Topic must be one of acquisition, activation, retention"})
			return
		}
		h.log.Error("shorten failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating short URL"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"shortUrl":  "http://" + c.Request.Host + "/" + link.Alias,
		"createdAt": link.CreatedAt,
	})
}

func (h *URLHandler) Redirect(c *gin.Context) {
	alias := c.Param("alias")

	destination, err := h.links.Resolve(c.Request.Context(), alias)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		h.log.Error("redirect failed", zap.String("alias", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Redirect error"})
		return
	}

	h.dispatchVisit(models.VisitEvent{
		Alias:     alias,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Timestamp: time.Now().UTC(),
	})

	c.Redirect(http.StatusFound, destination)
}

// dispatchVisit enqueues without blocking; a full queue drops the event
// rather than delaying the redirect.
func (h *URLHandler) dispatchVisit(event models.VisitEvent) {
	select {
	case h.visitEvents <- event:
	default:
		h.log.Warn("visit queue full, dropping event", zap.String("alias", event.Alias))
	}
}

func (h *URLHandler) URLAnalytics(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	alias := c.Param("alias")

	result, err := h.analytics.URLAnalytics(c.Request.Context(), alias, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		h.log.Error("url analytics failed", zap.String("alias", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analytics retrieval error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *URLHandler) TopicAnalytics(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	topic := c.Param("topic")

	result, err := h.analytics.TopicAnalytics(c.Request.Context(), topic, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No URLs found for the specified topic"})
			return
		}
		h.log.Error("topic analytics failed", zap.String("topic", topic), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Topic analytics error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *URLHandler) OverallAnalytics(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	result, err := h.analytics.OverallAnalytics(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("overall analytics failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Overall analytics error"})
		return
	}
	c.JSON(http.StatusOK, result)
}
