package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ev-charge-scheduler/internal/adapter/websocket"
	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
	"github.com/seu-repo/ev-charge-scheduler/internal/ports"
)

// SchedulingHandler exposes the scheduling core over HTTP.
type SchedulingHandler struct {
	service        ports.SchedulingService
	commitmentRepo ports.CommitmentRepository
	hub            *websocket.Hub
	log            *zap.Logger
}

// NewSchedulingHandler creates a new scheduling handler. hub may be nil, in
// which case scheduling outcomes are not pushed to live dashboards.
func NewSchedulingHandler(service ports.SchedulingService, commitmentRepo ports.CommitmentRepository, hub *websocket.Hub, log *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{service: service, commitmentRepo: commitmentRepo, hub: hub, log: log}
}

// vehicleRequestDTO is the wire shape of a VehicleRequest.
type vehicleRequestDTO struct {
	VehicleID        string    `json:"vehicle_id"`
	Arrival          time.Time `json:"arrival"`
	Departure        time.Time `json:"departure"`
	ArrivalSoC       float64   `json:"arrival_soc"`
	DemandedSoC      float64   `json:"demanded_soc"`
	BatteryCapacity  float64   `json:"battery_capacity_kwh"`
	PreferredCharger string    `json:"preferred_charger"`
}

// intervalDTO is the wire shape of an Interval.
type intervalDTO struct {
	Start             time.Time `json:"start"`
	TraditionalProd   float64   `json:"traditional_prod_kwh"`
	RenewablesProd    float64   `json:"renewables_prod_kwh"`
	Consumption       float64   `json:"consumption_kwh"`
	MaxCapacity       float64   `json:"max_capacity_kwh"`
	AvailableChargers []string  `json:"available_chargers"`
	PriceTariff       float64   `json:"price_tariff"`
}

type submitRequest struct {
	Vehicles  []vehicleRequestDTO `json:"vehicles"`
	Intervals []intervalDTO       `json:"intervals"`
}

// SubmitRequests handles POST /api/v1/scheduling/requests
func (h *SchedulingHandler) SubmitRequests(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	vehicles := make([]domain.VehicleRequest, len(req.Vehicles))
	for i, v := range req.Vehicles {
		vehicles[i] = domain.VehicleRequest{
			VehicleID:        v.VehicleID,
			Arrival:          v.Arrival,
			Departure:        v.Departure,
			ArrivalSoC:       v.ArrivalSoC,
			DemandedSoC:      v.DemandedSoC,
			BatteryCapacity:  v.BatteryCapacity,
			PreferredCharger: v.PreferredCharger,
		}
	}
	intervals := make([]domain.Interval, len(req.Intervals))
	for i, iv := range req.Intervals {
		intervals[i] = domain.Interval{
			Start:             iv.Start,
			TraditionalProd:   iv.TraditionalProd,
			RenewablesProd:    iv.RenewablesProd,
			Consumption:       iv.Consumption,
			MaxCapacity:       iv.MaxCapacity,
			AvailableChargers: iv.AvailableChargers,
			PriceTariff:       iv.PriceTariff,
		}
	}

	result, err := h.service.Submit(c.Context(), vehicles, intervals)
	if err != nil {
		h.log.Error("Failed to submit scheduling request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "scheduling failed"})
	}
	if result == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed vehicles or intervals"})
	}

	if h.hub != nil {
		if event, err := json.Marshal(fiber.Map{
			"type":      "scheduling.submitted",
			"schedules": result.Schedules,
			"statuses":  result.Statuses,
		}); err == nil {
			h.hub.Broadcast(event)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"schedules": result.Schedules,
		"statuses":  result.Statuses,
	})
}

// GetTimetable handles GET /api/v1/scheduling/timetable/:vehicle_id
func (h *SchedulingHandler) GetTimetable(c *fiber.Ctx) error {
	vehicleID := c.Params("vehicle_id")
	sched, status, err := h.service.LastSchedule(c.Context(), vehicleID)
	if err != nil {
		h.log.Error("Failed to look up schedule", zap.String("vehicle_id", vehicleID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	if sched == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no schedule found"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"schedule": sched,
		"status":   status.String(),
	})
}

// GetChargerCommitments handles GET /api/v1/scheduling/chargers/:id/commitments
func (h *SchedulingHandler) GetChargerCommitments(c *fiber.Ctx) error {
	chargerID := c.Params("id")
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now().Add(7 * 24 * time.Hour)

	commitments, err := h.commitmentRepo.FindByCharger(c.Context(), chargerID, from, to)
	if err != nil {
		h.log.Error("Failed to list commitments", zap.String("charger_id", chargerID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"commitments": commitments})
}
