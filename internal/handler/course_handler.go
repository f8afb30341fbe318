package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"learnhub/internal/errors"
	"learnhub/internal/service"
)

// CourseHandler handles course catalog endpoints.
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseRequest represents a course create or update request.
type CourseRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Duration    string   `json:"duration" validate:"max=64"`
	Modules     []string `json:"modules" validate:"dive,required"`
	Price       string   `json:"price" example:"199.00"`
}

func (r CourseRequest) toInput() (service.CourseInput, error) {
	price := decimal.Zero
	if r.Price != "" {
		p, err := decimal.NewFromString(r.Price)
		if err != nil {
			return service.CourseInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "price must be a decimal number",
				Code:  "VALIDATION_ERROR",
			})
		}
		price = p
	}
	return service.CourseInput{
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		Modules:     r.Modules,
		Price:       price,
	}, nil
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "Course"
// @Success 201 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	var req CourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	course, err := h.courseService.Create(c.Request().Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, course)
}

// Get godoc
// @Summary Get a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} model.Course
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	course, err := h.courseService.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

// List godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Course
// @Router /courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.courseService.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body CourseRequest true "Course"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req CourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	course, err := h.courseService.Update(c.Request().Context(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Description Fails with 409 while certificates reference the course.
// @Tags courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.courseService.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
