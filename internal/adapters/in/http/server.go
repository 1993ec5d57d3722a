package http

import (
	"net/http"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Handlers groups the use cases the API exposes.
type Handlers struct {
	CreateOrder               commands.CreateOrderCommandHandler
	VendorDecision            commands.VendorDecisionCommandHandler
	CancelOrder               commands.CancelOrderCommandHandler
	BroadcastToPartners       commands.BroadcastToPartnersCommandHandler
	PartnerClaim              commands.PartnerClaimCommandHandler
	VerifyOTP                 commands.VerifyOTPCommandHandler
	AdvanceDeliveryStatus     commands.AdvanceDeliveryStatusCommandHandler
	OverrideDeliveryCharge    commands.OverrideDeliveryChargeCommandHandler
	CreatePartner             commands.CreatePartnerCommandHandler
	UpdatePartnerAvailability commands.UpdatePartnerAvailabilityCommandHandler

	GetOrder           queries.GetOrderQueryHandler
	GetActiveOrders    queries.GetActiveOrdersQueryHandler
	GetBroadcastStatus queries.GetBroadcastStatusQueryHandler
	GetPartners        queries.GetPartnersQueryHandler
}

// Server translates HTTP requests into commands and queries and renders their
// results. Every route requires an authenticated actor.
type Server struct {
	h     Handlers
	clock ports.Clock
}

func NewServer(handlers Handlers, clock ports.Clock) *Server {
	return &Server{h: handlers, clock: clock}
}

// Register mounts the API under /api/v1 behind mw, typically the request
// validator and the bearer authenticator.
func (s *Server) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/v1", mw...)

	g.POST("/orders", s.CreateOrder)
	g.GET("/orders/active", s.GetActiveOrders)
	g.GET("/orders/:orderId", s.GetOrder)
	g.POST("/orders/:orderId/decision", s.VendorDecision)
	g.POST("/orders/:orderId/cancel", s.CancelOrder)
	g.POST("/orders/:orderId/broadcast", s.BroadcastToPartners)
	g.GET("/orders/:orderId/broadcast", s.GetBroadcastStatus)
	g.POST("/orders/:orderId/claim", s.PartnerClaim)
	g.POST("/orders/:orderId/assign", s.AssignPartner)
	g.POST("/orders/:orderId/otp/verify", s.VerifyOTP)
	g.POST("/orders/:orderId/status", s.AdvanceDeliveryStatus)
	g.POST("/orders/:orderId/delivery-charge", s.OverrideDeliveryCharge)

	g.GET("/partners", s.GetPartners)
	g.POST("/partners", s.CreatePartner)
	g.PUT("/partners/:partnerId/availability", s.UpdatePartnerAvailability)
}

func bindUUIDParam(c echo.Context, name string) (kernel.UUID, error) {
	var raw openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name).SetInternal(err)
	}
	return kernel.UUIDFromGoogle(raw)
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return nil
}

// orderRequest resolves what every order route needs: the caller and the order id.
func orderRequest(c echo.Context) (kernel.Actor, kernel.UUID, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	orderID, err := bindUUIDParam(c, "orderId")
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	return actor, orderID, nil
}

// respondWithOrder re-reads the order through the visibility rules so the caller
// sees exactly what GET /orders/{id} would show.
func (s *Server) respondWithOrder(c echo.Context, status int, orderID kernel.UUID, actor kernel.Actor) error {
	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return err
	}
	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(status, toOrder(view))
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req NewOrder
	if err = bindBody(c, &req); err != nil {
		return err
	}

	payload, err := checkoutPayload(req, actor)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateOrderCommand(payload, actor)
	if err != nil {
		return err
	}

	created, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusCreated, created.ID(), actor)
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveOrdersQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrders(views))
}

// VendorDecision handles POST /api/v1/orders/{orderId}/decision.
func (s *Server) VendorDecision(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req DecisionRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	decision, err := commands.ParseDecision(req.Decision)
	if err != nil {
		return err
	}
	cmd, err := commands.NewVendorDecisionCommand(orderID, decision, req.Override, actor)
	if err != nil {
		return err
	}

	if _, err = s.h.VendorDecision.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel. The body is optional.
func (s *Server) CancelOrder(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req CancelRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewCancelOrderCommand(orderID, req.Override, actor)
	if err != nil {
		return err
	}

	if _, err = s.h.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// BroadcastToPartners handles POST /api/v1/orders/{orderId}/broadcast.
func (s *Server) BroadcastToPartners(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewBroadcastToPartnersCommand(orderID, actor)
	if err != nil {
		return err
	}
	batch, err := s.h.BroadcastToPartners.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, broadcastFromBatch(batch, s.clock.Now()))
}

// GetBroadcastStatus handles GET /api/v1/orders/{orderId}/broadcast.
func (s *Server) GetBroadcastStatus(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetBroadcastStatusQuery(orderID, actor)
	if err != nil {
		return err
	}
	view, err := s.h.GetBroadcastStatus.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBroadcast(view))
}

// PartnerClaim handles POST /api/v1/orders/{orderId}/claim.
func (s *Server) PartnerClaim(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewPartnerClaimCommand(orderID, actor)
	if err != nil {
		return err
	}
	if _, err = s.h.PartnerClaim.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// AssignPartner handles POST /api/v1/orders/{orderId}/assign.
func (s *Server) AssignPartner(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req AssignRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	partnerID, err := kernel.UUIDFromGoogle(req.PartnerID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDirectAssignCommand(orderID, partnerID, actor)
	if err != nil {
		return err
	}

	if _, err = s.h.PartnerClaim.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// VerifyOTP handles POST /api/v1/orders/{orderId}/otp/verify.
func (s *Server) VerifyOTP(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req VerifyOTPRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewVerifyOTPCommand(orderID, req.Code, actor)
	if err != nil {
		return err
	}

	if err = s.h.VerifyOTP.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdvanceDeliveryStatus handles POST /api/v1/orders/{orderId}/status.
func (s *Server) AdvanceDeliveryStatus(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req StatusRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	cmd, err := commands.NewAdvanceDeliveryStatusCommand(orderID, status, actor)
	if err != nil {
		return err
	}

	if _, err = s.h.AdvanceDeliveryStatus.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// OverrideDeliveryCharge handles POST /api/v1/orders/{orderId}/delivery-charge.
func (s *Server) OverrideDeliveryCharge(c echo.Context) error {
	actor, orderID, err := orderRequest(c)
	if err != nil {
		return err
	}

	var req DeliveryChargeRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	charge, err := kernel.MoneyFromString(req.DeliveryCharge)
	if err != nil {
		return err
	}
	cmd, err := commands.NewOverrideDeliveryChargeCommand(orderID, charge, actor)
	if err != nil {
		return err
	}

	if _, err = s.h.OverrideDeliveryCharge.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// GetPartners handles GET /api/v1/partners.
func (s *Server) GetPartners(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetPartnersQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.h.GetPartners.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]Partner, 0, len(views))
	for _, v := range views {
		response = append(response, toPartner(v))
	}
	return c.JSON(http.StatusOK, response)
}

// CreatePartner handles POST /api/v1/partners.
func (s *Server) CreatePartner(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req NewPartner
	if err = bindBody(c, &req); err != nil {
		return err
	}
	partnerID, err := kernel.UUIDFromGoogle(req.ID)
	if err != nil {
		return err
	}
	location, err := newLocation(req.Location)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreatePartnerCommand(partnerID, req.Name, location, actor)
	if err != nil {
		return err
	}

	created, err := s.h.CreatePartner.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPartner(queries.PartnerViewOf(created)))
}

// UpdatePartnerAvailability handles PUT /api/v1/partners/{partnerId}/availability.
func (s *Server) UpdatePartnerAvailability(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	partnerID, err := bindUUIDParam(c, "partnerId")
	if err != nil {
		return err
	}

	var req AvailabilityRequest
	if err = bindBody(c, &req); err != nil {
		return err
	}
	var location *kernel.Location
	if req.Location != nil {
		loc, err := newLocation(*req.Location)
		if err != nil {
			return err
		}
		location = &loc
	}
	cmd, err := commands.NewUpdatePartnerAvailabilityCommand(partnerID, req.Available, location, actor)
	if err != nil {
		return err
	}

	updated, err := s.h.UpdatePartnerAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPartner(queries.PartnerViewOf(updated)))
}
