package httpadapter

import (
	"errors"
	"net/http"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func (rt *Router) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := rt.svc.Accounts.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := rt.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := rt.svc.Accounts.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) me(w http.ResponseWriter, r *http.Request) {
	principal := mustPrincipal(r)
	user, err := rt.svc.Accounts.Me(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) createBusiness(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	business, err := rt.svc.Businesses.Create(r.Context(), mustPrincipal(r), req.profile())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, business)
}

// getBusiness answers null for a user without a business.
func (rt *Router) getBusiness(w http.ResponseWriter, r *http.Request) {
	business, err := rt.svc.Businesses.Get(r.Context(), mustPrincipal(r))
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, business)
}

func (rt *Router) updateBusiness(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	business, err := rt.svc.Businesses.Update(r.Context(), mustPrincipal(r), req.profile())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, business)
}

// mustPrincipal reads the principal set by authMiddleware. Routes using it
// are only mounted behind that middleware.
func mustPrincipal(r *http.Request) domain.Principal {
	principal, _ := principalFromContext(r.Context())
	return principal
}
