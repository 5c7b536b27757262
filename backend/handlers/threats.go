package handlers

import (
	"net/http"
	"strings"
	"time"

	"threatscope-web-gui/backend/models"
	"threatscope-web-gui/backend/services"

	"github.com/gofiber/fiber/v2"
)

// criteriaFromQuery translates the query string of a list request into
// filter criteria. The UI's "all" sentinels collapse to zero values here so
// the filter engine never sees them.
func criteriaFromQuery(c *fiber.Ctx) models.FilterCriteria {
	criteria := models.FilterCriteria{
		Search: c.Query("search", ""),
		Source: c.Query("source", ""),
		Window: services.TimeRangeWindow(c.Query("range", "all")),
	}

	if sev := c.Query("severity", ""); sev != "" && sev != "all" {
		criteria.Severity = sev
	}
	if types := c.Query("types", ""); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				criteria.ThreatTypes = append(criteria.ThreatTypes, t)
			}
		}
	}
	return criteria
}

// GetThreats returns the filtered, paginated threat list
// GET /api/threats?page=1&limit=10&search=&types=&severity=&source=&range=&immediate=
func (h *Handler) GetThreats(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if limit > 100 {
		limit = 100
	}

	records := h.Session.Records()

	// Immediate view pre-restricts to Critical/High before user filters
	if c.QueryBool("immediate", false) {
		immediate := make([]models.ThreatRecord, 0, len(records))
		for _, t := range records {
			if t.Severity == "Critical" || t.Severity == "High" {
				immediate = append(immediate, t)
			}
		}
		records = immediate
	}

	criteria := criteriaFromQuery(c)
	h.Session.SetCriteria(criteria)

	visible := services.FilterThreats(records, criteria, time.Now())

	result, err := services.PaginateThreats(visible, page, limit)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.Session.SetPage(result.CurrentPage)

	return c.JSON(result)
}

// GetThreat returns a single record
// GET /api/threats/:id
func (h *Handler) GetThreat(c *fiber.Ctx) error {
	id := c.Params("id")
	record, ok := h.Session.Get(id)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Threat not found"})
	}
	return c.JSON(record)
}

// GetThreatStats returns the aggregated rollup for the overview page
// GET /api/threats/stats?filtered=true applies the active filter first
func (h *Handler) GetThreatStats(c *fiber.Ctx) error {
	records := h.Session.Records()
	if c.QueryBool("filtered", false) {
		records = services.FilterThreats(records, h.Session.Criteria(), time.Now())
	}
	return c.JSON(services.CalculateThreatStats(records))
}

// GetTopAttackers returns source addresses ranked by summed hits
// GET /api/threats/attackers?limit=5
func (h *Handler) GetTopAttackers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	return c.JSON(fiber.Map{
		"attackers": services.TopAttackers(h.Session.Records(), limit),
	})
}

// GetAttackPatterns returns (type, port) pairings ranked by frequency
// GET /api/threats/patterns?limit=10
func (h *Handler) GetAttackPatterns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	return c.JSON(fiber.Map{
		"patterns": services.AttackPatterns(h.Session.Records(), limit),
	})
}

// UpdateThreatStatus applies an operator action to one record
// PUT /api/threats/:id/status {"status": "Blocked"}
func (h *Handler) UpdateThreatStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	record, err := h.Session.UpdateStatus(id, input.Status)
	if err != nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	AddEvent("info", "Threat "+id+" marked "+input.Status)
	return c.JSON(record)
}

// BulkUpdateStatus applies one status to many records
// POST /api/threats/bulk/status {"ids": [...], "status": "Dismissed"}
func (h *Handler) BulkUpdateStatus(c *fiber.Ctx) error {
	var input struct {
		IDs    []string `json:"ids"`
		Status string   `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !models.CanTransitionTo(models.StatusNew, input.Status) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid target status: " + input.Status})
	}

	changed := h.Session.UpdateStatusBulk(input.IDs, input.Status)
	AddEvent("info", "Bulk status update applied")

	return c.JSON(fiber.Map{"updated": changed})
}

// GetSelection returns the selected record ids
// GET /api/threats/selection
func (h *Handler) GetSelection(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ids": h.Session.Selected()})
}

// UpdateSelection modifies the selection set
// POST /api/threats/selection {"select": [...], "deselect": [...], "all": false}
func (h *Handler) UpdateSelection(c *fiber.Ctx) error {
	var input struct {
		Select   []string `json:"select"`
		Deselect []string `json:"deselect"`
		All      bool     `json:"all"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	if input.All {
		h.Session.SelectVisible(time.Now())
	}
	h.Session.Select(input.Select...)
	h.Session.Deselect(input.Deselect...)

	return c.JSON(fiber.Map{"ids": h.Session.Selected()})
}

// ClearSelection empties the selection set
// DELETE /api/threats/selection
func (h *Handler) ClearSelection(c *fiber.Ctx) error {
	h.Session.ClearSelection()
	return c.JSON(fiber.Map{"ids": []string{}})
}

// ApplySelectionStatus applies one status to the whole selection
// POST /api/threats/selection/status {"status": "Blocked"}
func (h *Handler) ApplySelectionStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !models.CanTransitionTo(models.StatusNew, input.Status) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid target status: " + input.Status})
	}

	changed := h.Session.ApplySelection(input.Status)
	AddEvent("info", "Selection marked "+input.Status)

	return c.JSON(fiber.Map{"updated": changed})
}
