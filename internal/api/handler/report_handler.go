package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/weatherdesk/report-api/internal/core/ports"
)

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create queues a weather report for a city.
//
// @Summary      Request a weather report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        city  query     string  true  "City name"
// @Success      201   {object}  reportResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	report, err := h.service.Create(c.Request().Context(), caller, c.QueryParam("city"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReportResponse(report))
}

// List returns one page of reports, newest first. Admins see every report.
//
// @Summary      List reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 4, max 100)"
// @Success      200    {object}  reportPageResponse
// @Failure      401    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	page, err := queryPositive(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryPositive(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), caller, ports.ListReportsInput{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportPageResponse(result))
}

// Get returns one report.
//
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        report_id  path      int  true  "Report ID"
// @Success      200        {object}  reportResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /reports/{report_id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "report_id")
	if err != nil {
		return err
	}

	report, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// Delete removes a report and its artifact.
//
// @Summary      Delete a report
// @Tags         reports
// @Security     BearerAuth
// @Param        report_id  path  int  true  "Report ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reports/{report_id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "report_id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Download streams the CSV artifact of a completed report.
//
// @Summary      Download a report
// @Tags         reports
// @Produce      text/csv
// @Param        report_id  path  int  true  "Report ID"
// @Success      200
// @Failure      404  {object}  errorResponse
// @Router       /reports/{report_id}/download [get]
func (h *ReportHandler) Download(c echo.Context) error {
	id, err := pathID(c, "report_id")
	if err != nil {
		return err
	}

	dl, err := h.service.Download(c.Request().Context(), id)
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+dl.Name+`"`)
	return c.Stream(http.StatusOK, dl.ContentType, dl.Body)
}
