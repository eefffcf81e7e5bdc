package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pantrykeeper/internal/server/models"
	"github.com/dmitrijs2005/pantrykeeper/internal/server/services"
	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

// bindLot decodes and checks the parts of a lot request that are about
// the wire format. Business rules stay in the service.
func bindLot(c *gin.Context) (req lotRequest, exp time.Time, ok bool) {
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return req, exp, false
	}
	if req.Quantity == nil {
		badRequest(c, "quantity is required")
		return req, exp, false
	}
	if req.ExpirationDate == "" {
		badRequest(c, "expiration_date is required")
		return req, exp, false
	}
	exp, err := timex.ParseDate(req.ExpirationDate)
	if err != nil {
		badRequest(c, err.Error())
		return req, exp, false
	}
	return req, exp, true
}

func (h *handler) addLot(c *gin.Context) {
	req, exp, ok := bindLot(c)
	if !ok {
		return
	}

	lot, action, err := h.inventory.AddOrMerge(c.Request.Context(), currentUser(c), req.Name, *req.Quantity, req.Unit, exp)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if action == models.ActionCreated {
		status = http.StatusCreated
	}
	c.JSON(status, addLotResponse{Action: action, Lot: toLot(lot)})
}

func (h *handler) listLots(c *gin.Context) {
	lots, err := h.inventory.List(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLots(lots))
}

func (h *handler) deleteAllLots(c *gin.Context) {
	n, err := h.inventory.DeleteAll(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, deletedResponse{Deleted: n})
}

func (h *handler) expiringLots(c *gin.Context) {
	days := services.DefaultExpiryWindowDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "days must be an integer")
			return
		}
		days = n
	}

	lots, err := h.inventory.ExpiringWithin(c.Request.Context(), currentUser(c), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLots(lots))
}

func (h *handler) getLot(c *gin.Context) {
	lot, err := h.inventory.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLot(lot))
}

func (h *handler) updateLot(c *gin.Context) {
	req, exp, ok := bindLot(c)
	if !ok {
		return
	}

	lot, err := h.inventory.Update(c.Request.Context(), currentUser(c), c.Param("id"), req.Name, *req.Quantity, req.Unit, exp)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLot(lot))
}

func (h *handler) deleteLot(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) consumeLot(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}

	res, err := h.inventory.Consume(c.Request.Context(), currentUser(c), c.Param("id"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}

	out := consumeResponse{Removed: res.Removed}
	if res.Lot != nil && !res.Removed {
		l := toLot(res.Lot)
		out.Lot = &l
	}
	c.JSON(http.StatusOK, out)
}
