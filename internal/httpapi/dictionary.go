package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /api/dictionary/windows[/{id}] — single entity if :id (or ?id=) is
// present, else {windows: Window[]} filtered by search_value.
func (h *Handler) getWindow(c echo.Context) error {
	p := queryParams(c)
	p.ID = firstNonEmpty(c.Param("id"), c.QueryParam("id"))
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	w, err := h.svc.Window(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) listWindows(c echo.Context) error {
	if id := firstNonEmpty(c.Param("id"), c.QueryParam("id")); id != "" {
		return h.getWindow(c)
	}
	p := queryParams(c)
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	ws, err := h.svc.ListWindows(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"windows": ws})
}

func (h *Handler) getProcess(c echo.Context) error {
	p := queryParams(c)
	p.ID = firstNonEmpty(c.Param("id"), c.QueryParam("id"))
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	pr, err := h.svc.Process(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) listProcesses(c echo.Context) error {
	if id := firstNonEmpty(c.Param("id"), c.QueryParam("id")); id != "" {
		return h.getProcess(c)
	}
	p := queryParams(c)
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	ps, err := h.svc.ListProcesses(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"processes": ps})
}

func (h *Handler) getForm(c echo.Context) error {
	p := queryParams(c)
	p.ID = firstNonEmpty(c.Param("id"), c.QueryParam("id"))
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	f, err := h.svc.Form(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) listForms(c echo.Context) error {
	if id := firstNonEmpty(c.Param("id"), c.QueryParam("id")); id != "" {
		return h.getForm(c)
	}
	p := queryParams(c)
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	fs, err := h.svc.ListForms(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"forms": fs})
}

func (h *Handler) getBrowser(c echo.Context) error {
	p := queryParams(c)
	p.ID = firstNonEmpty(c.Param("id"), c.QueryParam("id"))
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	b, err := h.svc.Browser(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) listBrowsers(c echo.Context) error {
	if id := firstNonEmpty(c.Param("id"), c.QueryParam("id")); id != "" {
		return h.getBrowser(c)
	}
	p := queryParams(c)
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	bs, err := h.svc.ListBrowsers(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"browsers": bs})
}

// GET /api/security/menus — the authorization-filtered menu tree.
func (h *Handler) menus(c echo.Context) error {
	p := queryParams(c)
	if err := h.checkDictionaryCode(p); err != nil {
		return err
	}
	menus, err := h.svc.AllowedMenu(c.Request().Context(), p)
	if err != nil {
		return asHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"menus": menus})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
