package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/taskboard/internal/core/ports"
)

type TodoHandler struct {
	service ports.TodoService
}

func NewTodoHandler(service ports.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// List handles GET /api/todos.
//
// @Summary      List the caller's todos
// @Tags         todos
// @Produce      json
// @Success      200  {array}   domain.Todo
// @Failure      401  {object}  errorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	todos, err := h.service.List(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}

// Get handles GET /api/todos/:id.
//
// @Summary      Get a todo
// @Tags         todos
// @Produce      json
// @Param        id   path      int  true  "Todo ID"
// @Success      200  {object}  domain.Todo
// @Failure      404  {object}  errorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	todo, err := h.service.Get(c.Request().Context(), session.UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todo)
}

// Create handles POST /api/todos.
//
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        csrf-token  header    string             true  "CSRF token"
// @Param        body        body      createTodoRequest  true  "Todo"
// @Success      200         {object}  domain.Todo
// @Failure      400         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	todo, err := h.service.Create(c.Request().Context(), session.UserID, req.Task)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todo)
}

// Update handles PUT /api/todos/:id.
//
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        csrf-token  header    string             true  "CSRF token"
// @Param        id          path      int                true  "Todo ID"
// @Param        body        body      updateTodoRequest  true  "Fields to change"
// @Success      200         {object}  domain.Todo
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	var req updateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	todo, err := h.service.Update(c.Request().Context(), session.UserID, id, toTodoPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todo)
}

// Delete handles DELETE /api/todos/:id.
//
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Param        csrf-token  header    string  true  "CSRF token"
// @Param        id          path      int     true  "Todo ID"
// @Success      200         {object}  messageResponse
// @Failure      404         {object}  errorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), session.UserID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Todo deleted successfully"})
}
