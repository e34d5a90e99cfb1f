package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	empireQueries "github.com/andrescamacho/imperium/internal/application/empire/queries"
	ledgerQueries "github.com/andrescamacho/imperium/internal/application/ledger/queries"
	"github.com/andrescamacho/imperium/internal/application/production"
	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	productionQueries "github.com/andrescamacho/imperium/internal/application/production/queries"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

type startRequest struct {
	LocationCoord string `json:"locationCoord" binding:"required"`
	ItemKey       string `json:"itemKey" binding:"required"`
	TargetLevel   int    `json:"targetLevel" binding:"min=0"`
	RequestToken  string `json:"requestToken" binding:"omitempty,max=128"`
}

type queueQuery struct {
	Location string `form:"location"`
}

type historyQuery struct {
	Limit int `form:"limit"`
}

// StartProduction handles POST /api/v1/{track}/start
func (s *Server) StartProduction(track shared.Track) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithBindError(c, err)
			return
		}

		resp, err := s.mediator.Send(c.Request.Context(), &productionCommands.StartProductionCommand{
			Actor:        c.GetString(actorKey),
			Track:        track,
			Location:     strings.TrimSpace(req.LocationCoord),
			ItemKey:      strings.TrimSpace(req.ItemKey),
			TargetLevel:  req.TargetLevel,
			RequestToken: strings.TrimSpace(req.RequestToken),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		out, ok := resp.(*productionCommands.StartProductionResponse)
		if !ok {
			abortWithError(c, unexpectedResponse(resp))
			return
		}
		c.JSON(http.StatusOK, gin.H{"entry": out.Entry})
	}
}

// CancelProduction handles DELETE /api/v1/{track}/queue/:id
func (s *Server) CancelProduction(track shared.Track) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.mediator.Send(c.Request.Context(), &productionCommands.CancelProductionCommand{
			Actor:   c.GetString(actorKey),
			Track:   track,
			EntryID: strings.TrimSpace(c.Param("id")),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		out, ok := resp.(*production.CancelResult)
		if !ok {
			abortWithError(c, unexpectedResponse(resp))
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ListQueue handles GET /api/v1/{track}/queue
func (s *Server) ListQueue(track shared.Track) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query queueQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			abortWithBindError(c, err)
			return
		}

		resp, err := s.mediator.Send(c.Request.Context(), &productionQueries.ListQueueQuery{
			Actor:    c.GetString(actorKey),
			Track:    track,
			Location: strings.TrimSpace(query.Location),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		out, ok := resp.(*productionQueries.ListQueueResponse)
		if !ok {
			abortWithError(c, unexpectedResponse(resp))
			return
		}
		queue := out.Queue
		if queue == nil {
			queue = []*production.EntryView{}
		}
		c.JSON(http.StatusOK, gin.H{"queue": queue})
	}
}

// GetEmpire handles GET /api/v1/empire
func (s *Server) GetEmpire(c *gin.Context) {
	resp, err := s.mediator.Send(c.Request.Context(), &empireQueries.GetEmpireQuery{
		Actor: c.GetString(actorKey),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out, ok := resp.(*empireQueries.GetEmpireResponse)
	if !ok {
		abortWithError(c, unexpectedResponse(resp))
		return
	}
	c.JSON(http.StatusOK, gin.H{"empire": out.Empire})
}

// GetCreditHistory handles GET /api/v1/empire/credits/history
func (s *Server) GetCreditHistory(c *gin.Context) {
	var query historyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithBindError(c, err)
		return
	}

	resp, err := s.mediator.Send(c.Request.Context(), &ledgerQueries.GetCreditHistoryQuery{
		Actor: c.GetString(actorKey),
		Limit: query.Limit,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out, ok := resp.(*ledgerQueries.GetCreditHistoryResponse)
	if !ok {
		abortWithError(c, unexpectedResponse(resp))
		return
	}
	transactions := out.Transactions
	if transactions == nil {
		transactions = []*ledgerQueries.TransactionDTO{}
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":      out.Balance,
		"transactions": transactions,
	})
}

func unexpectedResponse(resp interface{}) error {
	return fmt.Errorf("unexpected response type %T", resp)
}
