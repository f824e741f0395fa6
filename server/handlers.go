package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/metrics"
)

// signatureHeader carries the provider's HMAC over the raw callback body
const signatureHeader = "x-nowpayments-sig"

// Server wires the HTTP surface to the domain services
type Server struct {
	deposits    interfaces.DepositService
	entries     interfaces.EntryService
	draws       interfaces.DrawService
	settlement  interfaces.SettlementService
	withdrawals interfaces.WithdrawalService
	wallets     interfaces.WalletService
	uowFactory  interfaces.UnitOfWorkFactory
	metrics     *metrics.Metrics
	jwtSecret   string
}

// Deps bundles the server's dependencies
type Deps struct {
	Deposits    interfaces.DepositService
	Entries     interfaces.EntryService
	Draws       interfaces.DrawService
	Settlement  interfaces.SettlementService
	Withdrawals interfaces.WithdrawalService
	Wallets     interfaces.WalletService
	UowFactory  interfaces.UnitOfWorkFactory
	Metrics     *metrics.Metrics
	JWTSecret   string
}

// New creates a new server
func New(deps Deps) *Server {
	return &Server{
		deposits:    deps.Deposits,
		entries:     deps.Entries,
		draws:       deps.Draws,
		settlement:  deps.Settlement,
		withdrawals: deps.Withdrawals,
		wallets:     deps.Wallets,
		uowFactory:  deps.UowFactory,
		metrics:     deps.Metrics,
		jwtSecret:   deps.JWTSecret,
	}
}

type depositIntentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (s *Server) handleDepositIntent(c *gin.Context) {
	var req depositIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(c, apperrors.Validation("invalid_amount", "amount must be a decimal number"))
		return
	}

	result, err := s.deposits.CreateIntent(c.Request.Context(), callerID(c), amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentId":   result.PaymentID,
		"payAddress":  result.PayAddress,
		"payAmount":   result.PayAmount.String(),
		"payCurrency": result.PayCurrency,
	})
}

// handleDepositWebhook processes a signed provider callback. The raw body is
// read before any parsing because the signature covers the bytes as sent.
func (s *Server) handleDepositWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		writeError(c, apperrors.Validation("unreadable_body", "cannot read request body"))
		return
	}

	err = s.deposits.ProcessCallback(c.Request.Context(), rawBody, c.GetHeader(signatureHeader))
	if err != nil {
		s.metrics.DepositCallbacks.WithLabelValues("rejected").Inc()
		writeError(c, err)
		return
	}

	s.metrics.DepositCallbacks.WithLabelValues("processed").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetWallet(c *gin.Context) {
	wallet, err := s.wallets.GetSummary(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":           wallet.Balance.String(),
		"depositAddress":    wallet.DepositAddress,
		"withdrawalAddress": wallet.WithdrawalAddress,
	})
}

func (s *Server) handleListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txs, err := s.wallets.ListTransactions(c.Request.Context(), callerID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(txs))
	for _, t := range txs {
		out = append(out, gin.H{
			"id":          t.ID,
			"type":        t.Type,
			"status":      t.Status,
			"amount":      t.Amount.String(),
			"description": t.Description,
			"createdAt":   t.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

type withdrawalAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

func (s *Server) handleSetWithdrawalAddress(c *gin.Context) {
	var req withdrawalAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}

	if err := s.wallets.SetWithdrawalAddress(c.Request.Context(), callerID(c), req.Address); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTicketLimits(c *gin.Context) {
	info, err := s.entries.TicketLimits(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{
		"referralCount": info.ReferralCount,
		"maxTickets":    info.MaxTickets,
		"baseCap":       info.BaseCap,
		"tiers":         info.Tiers,
	}
	if info.NextTier != nil {
		resp["nextTier"] = info.NextTier
	}
	c.JSON(http.StatusOK, resp)
}

type enterDrawRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (s *Server) handleEnterDraw(c *gin.Context) {
	drawID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("invalid_draw_id", "draw id must be an integer"))
		return
	}

	var req enterDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}

	result, err := s.entries.PurchaseEntries(c.Request.Context(), callerID(c), drawID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}

	tickets := make([]gin.H, 0, len(result.Entries))
	for _, e := range result.Entries {
		tickets = append(tickets, gin.H{
			"id":           e.ID,
			"ticketNumber": e.TicketNumber,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":    tickets,
		"totalCost":  result.TotalCost.String(),
		"newBalance": result.NewBalance.String(),
	})
}

func (s *Server) handleListWinners(c *gin.Context) {
	drawID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("invalid_draw_id", "draw id must be an integer"))
		return
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	defer uow.Rollback()

	winners, err := uow.WinnerRepository().ListByDraw(c.Request.Context(), drawID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(winners))
	for _, w := range winners {
		entry := gin.H{
			"position":     w.Position,
			"userId":       w.UserID,
			"ticketNumber": w.TicketNumber,
		}
		if w.PrizeAmount != nil {
			entry["prizeAmount"] = w.PrizeAmount.String()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"winners": out})
}

type createDrawRequest struct {
	Title      string    `json:"title" binding:"required"`
	EntryPrice string    `json:"entryPrice" binding:"required"`
	MaxEntries *int      `json:"maxEntries"`
	DrawTime   time.Time `json:"drawTime" binding:"required"`
	Prizes     []string  `json:"prizes" binding:"required"`
}

func (s *Server) handleCreateDraw(c *gin.Context) {
	var req createDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}
	entryPrice, err := decimal.NewFromString(req.EntryPrice)
	if err != nil {
		writeError(c, apperrors.Validation("invalid_entry_price", "entry price must be a decimal number"))
		return
	}
	prizeAmounts := make([]decimal.Decimal, 0, len(req.Prizes))
	for _, raw := range req.Prizes {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(c, apperrors.Validation("invalid_prize_amount", "prize amounts must be decimal numbers"))
			return
		}
		prizeAmounts = append(prizeAmounts, amount)
	}

	draw, prizes, err := s.draws.Create(c.Request.Context(), interfaces.CreateDrawInput{
		Title:        req.Title,
		EntryPrice:   entryPrice,
		MaxEntries:   req.MaxEntries,
		DrawTime:     req.DrawTime,
		PrizeAmounts: prizeAmounts,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"drawID": draw.ID,
		"admin":  callerID(c),
	}).Info("Draw created by admin")

	out := make([]gin.H, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, gin.H{"position": p.Position, "amount": p.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         draw.ID,
		"title":      draw.Title,
		"status":     draw.Status,
		"entryPrice": draw.EntryPrice.String(),
		"maxEntries": draw.MaxEntries,
		"drawTime":   draw.DrawTime,
		"prizes":     out,
	})
}

type executeDrawRequest struct {
	DrawID      int64 `json:"drawId" binding:"required"`
	WinnerCount int   `json:"winnerCount" binding:"required,min=1"`
}

func (s *Server) handleExecuteDraw(c *gin.Context) {
	var req executeDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}

	result, err := s.settlement.ExecuteDraw(c.Request.Context(), req.DrawID, req.WinnerCount)
	if err != nil {
		writeError(c, err)
		return
	}

	s.metrics.DrawsSettled.Inc()
	winners := make([]gin.H, 0, len(result.Winners))
	for _, w := range result.Winners {
		entry := gin.H{
			"position":     w.Position,
			"userId":       w.UserID,
			"ticketNumber": w.TicketNumber,
		}
		if w.PrizeAmount != nil {
			entry["prizeAmount"] = w.PrizeAmount.String()
			s.metrics.PrizesPaid.Inc()
		}
		winners = append(winners, entry)
	}

	log.WithFields(log.Fields{
		"drawID":  req.DrawID,
		"winners": result.TotalWinners,
		"admin":   callerID(c),
	}).Info("Draw executed")

	c.JSON(http.StatusOK, gin.H{
		"winners":      winners,
		"totalWinners": result.TotalWinners,
		"totalPayout":  result.TotalPayout.String(),
	})
}

type createWithdrawalRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Address string `json:"address" binding:"required"`
}

func (s *Server) handleCreateWithdrawal(c *gin.Context) {
	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(c, apperrors.Validation("invalid_amount", "amount must be a decimal number"))
		return
	}

	request, err := s.withdrawals.Create(c.Request.Context(), callerID(c), amount, req.Address)
	if err != nil {
		writeError(c, err)
		return
	}

	s.metrics.WithdrawalsCreated.Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":        request.ID,
		"amount":    request.Amount.String(),
		"fee":       request.Fee.String(),
		"netAmount": request.NetAmount.String(),
		"status":    request.Status,
	})
}

func (s *Server) handleListWithdrawals(c *gin.Context) {
	requests, err := s.withdrawals.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		out = append(out, gin.H{
			"id":          r.ID,
			"amount":      r.Amount.String(),
			"fee":         r.Fee.String(),
			"netAmount":   r.NetAmount.String(),
			"address":     r.CryptoAddress,
			"status":      r.Status,
			"requestedAt": r.RequestedAt,
			"reviewedAt":  r.ReviewedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": out})
}

type reviewWithdrawalRequest struct {
	WithdrawalID int64  `json:"withdrawalId" binding:"required"`
	Status       string `json:"status" binding:"required"`
	Notes        string `json:"notes"`
}

func (s *Server) handleReviewWithdrawal(c *gin.Context) {
	var req reviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("malformed_request", "invalid request body"))
		return
	}

	request, err := s.withdrawals.Review(c.Request.Context(), callerID(c),
		req.WithdrawalID, entities.WithdrawalStatus(req.Status), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	if request.Status.IsTerminal() {
		s.metrics.WithdrawalsDecided.WithLabelValues(string(request.Status)).Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         request.ID,
		"status":     request.Status,
		"reviewedAt": request.ReviewedAt,
	})
}
