package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	md "github.com/Astemirdum/library-circulation/pkg/middleware"
	"github.com/Astemirdum/library-circulation/pkg/validate"
	_ "github.com/Astemirdum/library-circulation/swagger"
)

type Handler struct {
	circulationSvc CirculationService
	clock          policy.Clock
	gatherer       prometheus.Gatherer
	log            *zap.Logger
}

type Option func(h *Handler)

func WithClock(clock policy.Clock) Option {
	return func(h *Handler) {
		h.clock = clock
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = g
	}
}

func New(circulationSvc CirculationService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		circulationSvc: circulationSvc,
		clock:          policy.SystemClock{},
		gatherer:       prometheus.DefaultGatherer,
		log:            log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// @title       Library circulation API
// @version     1.0
// @description Checkout, renewal, return and reservation queues for physical library items.
// @BasePath    /api/v1
func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(md.Recover())
	e.Use(md.CORS())

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/checkout", h.Checkout)
	api.POST("/renew", h.Renew)
	api.POST("/return", h.Return)
	api.POST("/loans/:loanId/fine/pay", h.PayFine)
	api.POST("/loans/:loanId/missing", h.ReportMissing)

	api.POST("/reservations", h.PlaceReservation)
	api.GET("/reservations/:reservationId", h.GetReservation)
	api.DELETE("/reservations/:reservationId", h.CancelReservation)

	api.GET("/items/:itemId", h.GetItem)
	api.POST("/items", h.AccessionItem)
	api.DELETE("/items/:itemId", h.RetireItem)
	api.POST("/items/:itemId/assessments", h.RecordAssessment)

	api.PUT("/members/:memberId", h.UpsertMember)
	api.GET("/members/:memberId/loans", h.ListMemberLoans)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// @Summary Check out an item
// @Tags    loans
// @Accept  json
// @Produce json
// @Param   request body     model.CheckoutRequest true "item and member"
// @Success 200     {object} model.CheckoutResponse
// @Failure 403,404,409,422 {object} errs.ErrorResponse
// @Router  /checkout [post]
func (h *Handler) Checkout(c echo.Context) error {
	var req model.CheckoutRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	loan, err := h.circulationSvc.Checkout(c.Request().Context(), req, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.CheckoutResponse{LoanID: loan.ID, DueAt: loan.DueAt})
}

// @Summary Renew a loan
// @Tags    loans
// @Accept  json
// @Produce json
// @Param   request body     model.RenewRequest true "loan"
// @Success 200     {object} model.RenewResponse
// @Failure 404,409,422 {object} errs.ErrorResponse
// @Router  /renew [post]
func (h *Handler) Renew(c echo.Context) error {
	var req model.RenewRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	loan, err := h.circulationSvc.Renew(c.Request().Context(), req.LoanID, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.RenewResponse{DueAt: loan.DueAt, RenewalCount: loan.RenewalCount})
}

// @Summary Return a loaned item
// @Tags    loans
// @Accept  json
// @Produce json
// @Param   request body     model.ReturnRequest true "loan"
// @Success 200     {object} model.ReturnResponse
// @Failure 404,409 {object} errs.ErrorResponse
// @Router  /return [post]
func (h *Handler) Return(c echo.Context) error {
	var req model.ReturnRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	loan, err := h.circulationSvc.Return(c.Request().Context(), req.LoanID, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.ReturnResponse{FineAccrued: loan.FineAccrued})
}

// ReportMissing closes the loan of a copy the member lost.
func (h *Handler) ReportMissing(c echo.Context) error {
	loan, err := h.circulationSvc.ReportMissing(c.Request().Context(), c.Param("loanId"), h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.ReturnResponse{FineAccrued: loan.FineAccrued})
}

func (h *Handler) PayFine(c echo.Context) error {
	loan, err := h.circulationSvc.PayFine(c.Request().Context(), c.Param("loanId"), h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.PayFineResponse{
		LoanID:      loan.ID,
		FineAccrued: loan.FineAccrued,
		FinePaid:    loan.FinePaid,
	})
}

func (h *Handler) ListMemberLoans(c echo.Context) error {
	loans, err := h.circulationSvc.ListMemberLoans(c.Request().Context(), c.Param("memberId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, loans)
}

// @Summary Reserve an item
// @Tags    reservations
// @Accept  json
// @Produce json
// @Param   request body     model.PlaceReservationRequest true "item and member"
// @Success 200     {object} model.ReservationView
// @Failure 403,404,409,422 {object} errs.ErrorResponse
// @Router  /reservations [post]
func (h *Handler) PlaceReservation(c echo.Context) error {
	var req model.PlaceReservationRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	view, err := h.circulationSvc.PlaceReservation(c.Request().Context(), req, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) GetReservation(c echo.Context) error {
	view, err := h.circulationSvc.GetReservation(c.Request().Context(), c.Param("reservationId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, view)
}

// @Summary Cancel a reservation
// @Tags    reservations
// @Produce json
// @Param   reservationId path     string true "reservation id"
// @Success 200           {object} model.CancelReservationResponse
// @Failure 404,409       {object} errs.ErrorResponse
// @Router  /reservations/{reservationId} [delete]
func (h *Handler) CancelReservation(c echo.Context) error {
	res, err := h.circulationSvc.CancelReservation(c.Request().Context(), c.Param("reservationId"), h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, model.CancelReservationResponse{Status: res.Status})
}

// @Summary Item availability
// @Tags    items
// @Produce json
// @Param   itemId path     string true "item id"
// @Success 200    {object} model.ItemStatus
// @Failure 404    {object} errs.ErrorResponse
// @Router  /items/{itemId} [get]
func (h *Handler) GetItem(c echo.Context) error {
	st, err := h.circulationSvc.GetItem(c.Request().Context(), c.Param("itemId"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) AccessionItem(c echo.Context) error {
	var req model.AccessionItemRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	item, err := h.circulationSvc.AccessionItem(c.Request().Context(), req, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) RetireItem(c echo.Context) error {
	item, err := h.circulationSvc.RetireItem(c.Request().Context(), c.Param("itemId"), h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, item)
}

// RecordAssessment takes the assessor from the staff header when the body leaves it out.
func (h *Handler) RecordAssessment(c echo.Context) error {
	var req model.AssessmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	req.ItemID = c.Param("itemId")
	if req.AssessedBy == "" {
		req.AssessedBy = c.Request().Header.Get(md.XStaffIDHeader)
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}
	st, err := h.circulationSvc.RecordConditionAssessment(c.Request().Context(), req, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) UpsertMember(c echo.Context) error {
	var req model.UpsertMemberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	req.MemberID = c.Param("memberId")
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}
	m, err := h.circulationSvc.UpsertMember(c.Request().Context(), req, h.clock.Now())
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
		Kind:    errs.KindOf(errs.ErrValidation),
		Message: err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrMemberSuspended):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrMemberLimitExceeded),
		errors.Is(err, errs.ErrReservationLimitExceeded),
		errors.Is(err, errs.ErrRenewalLimitExceeded),
		errors.Is(err, errs.ErrFineLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errs.IsBusiness(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	return echo.NewHTTPError(code, errs.ErrorResponse{
		Kind:    errs.KindOf(err),
		Message: err.Error(),
	})
}
