package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (rt *Router) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := rt.svc.Employees.List(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (rt *Router) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	employee, err := req.employee()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := rt.svc.Employees.Create(r.Context(), mustPrincipal(r), employee)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (rt *Router) getEmployee(w http.ResponseWriter, r *http.Request) {
	view, err := rt.svc.Employees.Get(r.Context(), mustPrincipal(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeUpdateRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	changes, err := req.changes()
	if err != nil {
		writeError(w, r, err)
		return
	}
	employee, err := rt.svc.Employees.Update(r.Context(), mustPrincipal(r), chi.URLParam(r, "employeeID"), changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

func (rt *Router) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Employees.Delete(r.Context(), mustPrincipal(r), chi.URLParam(r, "employeeID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}

func (rt *Router) listRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := rt.svc.Employees.ListRequirements(r.Context(), mustPrincipal(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (rt *Router) addRequirement(w http.ResponseWriter, r *http.Request) {
	var req requirementRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	newReq, err := req.requirement()
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := rt.svc.Employees.AddRequirement(r.Context(), mustPrincipal(r), chi.URLParam(r, "employeeID"), newReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) updateRequirement(w http.ResponseWriter, r *http.Request) {
	var req requirementUpdateRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	changes, err := req.changes()
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := rt.svc.Employees.UpdateRequirement(
		r.Context(),
		mustPrincipal(r),
		chi.URLParam(r, "employeeID"),
		chi.URLParam(r, "requirementID"),
		changes,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) employeeOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := rt.svc.Insights.EmployeeOverview(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (rt *Router) requirementTypes(w http.ResponseWriter, r *http.Request) {
	types, err := rt.svc.Employees.RequirementTypes(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}
