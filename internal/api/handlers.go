package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/export"
	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/status"
	"github.com/matheus3301/wxbak/internal/store"
)

type downloadRequest struct {
	UserMd5   string `json:"userMd5" binding:"required"`
	Table     string `json:"table" binding:"required"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) handleHealth(c *gin.Context) {
	state, since := status.Serving, s.startedAt
	if s.machine != nil {
		state, since = s.machine.Current()
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"state": state,
		"since": since.Unix(),
	}})
}

func (s *Server) handleListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: identity.ListAccounts(s.opts.Root)})
}

func (s *Server) handleGetUser(c *gin.Context) {
	account, ok := identity.LookupAccount(s.opts.Root, c.Param("md5"))
	if !ok {
		s.fail(c, http.StatusNotFound, "account not found")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: account})
}

func (s *Server) handleListChats(c *gin.Context) {
	minCount, ok := s.intQuery(c, "minCount", s.opts.MinMessageCount)
	if !ok {
		return
	}
	chats, err := s.index.List(c.Request.Context(), s.opts.Root, c.Query("userMd5"), minCount)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: chats})
}

func (s *Server) handleGetMessages(c *gin.Context) {
	limit, ok := s.intQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := s.intQuery(c, "offset", 0)
	if !ok {
		return
	}
	page, err := s.index.Messages(c.Request.Context(), conversation.Query{
		Root:        s.opts.Root,
		AccountHash: c.Query("userMd5"),
		Table:       c.Query("table"),
		Start:       c.Query("startDate"),
		End:         c.Query("endDate"),
		Limit:       limit,
		Offset:      offset,
		Window:      conversation.WindowPolicy(c.Query("window")),
	})
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: page})
}

func (s *Server) handleGetDates(c *gin.Context) {
	dates, err := s.index.Dates(c.Request.Context(), s.opts.Root, c.Query("userMd5"), c.Query("table"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: dates})
}

func (s *Server) handleGetStats(c *gin.Context) {
	stats, err := s.index.Stats(c.Request.Context(), s.opts.Root, c.Query("userMd5"), c.Query("table"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

func (s *Server) handleView(c *gin.Context) {
	conv, entries, err := s.collect(c, c.Query("userMd5"), c.Query("table"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.HTML(c.Writer, *conv, entries, s.index.Location()); err != nil {
		s.logger.Error("render transcript", zap.Error(err))
	}
}

func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	conv, entries, err := s.collect(c, req.UserMd5, req.Table, req.StartDate, req.EndDate)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", export.ContentDisposition(export.Filename(*conv)))
	c.JSON(http.StatusOK, export.JSON(*conv, entries))
}

// collect loads a conversation and up to ExportLimit of its messages in
// reading order. Without dates the whole history is taken.
func (s *Server) collect(c *gin.Context, hash, table, start, end string) (*conversation.Summary, []conversation.Entry, error) {
	ctx := c.Request.Context()
	conv, err := s.index.Conversation(ctx, s.opts.Root, hash, table)
	if err != nil {
		return nil, nil, err
	}
	limit := s.opts.ExportLimit
	if limit <= 0 {
		limit = export.DefaultLimit
	}
	page, err := s.index.Messages(ctx, conversation.Query{
		Root:        s.opts.Root,
		AccountHash: hash,
		Table:       table,
		Start:       start,
		End:         end,
		Limit:       limit,
		Window:      conversation.AllMessages,
	})
	if err != nil {
		return nil, nil, err
	}
	return conv, export.Chronological(page.Messages), nil
}

func (s *Server) intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid "+key+": not an integer")
		return 0, false
	}
	return n, true
}

func (s *Server) respondErr(c *gin.Context, err error) {
	var inputErr *conversation.InputError
	switch {
	case errors.As(err, &inputErr):
		s.fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.fail(c, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		s.fail(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Response{Success: false, Error: msg})
}
