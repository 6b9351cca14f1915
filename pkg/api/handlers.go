package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rolegate/rolegate/pkg/observability"
	"github.com/rolegate/rolegate/pkg/roles"
)

// Server exposes the role registry over HTTP.
type Server struct {
	registry *roles.Registry
	router   *mux.Router
	logger   *observability.Logger
}

// NewServer creates a new API server around a registry.
func NewServer(registry *roles.Registry, logger *observability.Logger) *Server {
	s := &Server{
		registry: registry,
		router:   mux.NewRouter(),
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Role routes
	s.router.HandleFunc("/roles", s.listRoles).Methods("GET")
	s.router.HandleFunc("/roles", s.createRole).Methods("POST")
	s.router.HandleFunc("/roles/{name}", s.getRole).Methods("GET")
	s.router.HandleFunc("/roles/{name}", s.deleteRole).Methods("DELETE")

	// Membership routes
	s.router.HandleFunc("/roles/{name}/members", s.addMember).Methods("POST")
	s.router.HandleFunc("/roles/{name}/members/{id}", s.removeMember).Methods("DELETE")

	// Hierarchy routes
	s.router.HandleFunc("/roles/{name}/children/{child}", s.addChild).Methods("PUT")
	s.router.HandleFunc("/roles/{name}/children/{child}", s.removeChild).Methods("DELETE")

	// Admin root routes
	s.router.HandleFunc("/admins", s.listAdmins).Methods("GET")
	s.router.HandleFunc("/admins", s.addAdmin).Methods("POST")
	s.router.HandleFunc("/admins/{id}", s.kickAdmin).Methods("DELETE")

	// Access checks
	s.router.HandleFunc("/check", s.check).Methods("POST")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can wrap it in middleware.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) summarize(role *roles.Role) RoleSummary {
	children := role.Children()
	names := make([]string, 0, len(children))
	for _, child := range children {
		if n := child.Name(); n != "" {
			names = append(names, n)
		}
	}
	return RoleSummary{
		Name:     role.Name(),
		Members:  role.Members(),
		Children: names,
	}
}

// listRoles handles GET /roles
func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	summaries := make([]RoleSummary, 0, len(names))
	for _, name := range names {
		role, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		summaries = append(summaries, s.summarize(role))
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

// createRole handles POST /roles
func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !s.parseJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "role name is required")
		return
	}

	children := make([]*roles.Role, 0, len(req.Children))
	for _, childName := range req.Children {
		child, err := s.registry.Get(childName)
		if err != nil {
			s.writeRegistryError(w, err)
			return
		}
		children = append(children, child)
	}

	role, err := s.registry.AddRole(req.Name, req.Members, children...)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.summarize(role))
}

// getRole handles GET /roles/{name}
func (s *Server) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.registry.Get(mux.Vars(r)["name"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.summarize(role))
}

// deleteRole handles DELETE /roles/{name}
func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	if _, err := s.registry.RemoveRole(mux.Vars(r)["name"]); err != nil {
		s.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addMember handles POST /roles/{name}/members
func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if !s.parseJSON(w, r, &req) {
		return
	}
	role, err := s.registry.Get(mux.Vars(r)["name"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	role.AddMember(req.ID)
	s.writeJSON(w, http.StatusOK, s.summarize(role))
}

// removeMember handles DELETE /roles/{name}/members/{id}
func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "member id must be an integer")
		return
	}
	role, err := s.registry.Get(vars["name"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	role.RemoveMember(id)
	w.WriteHeader(http.StatusNoContent)
}

// addChild handles PUT /roles/{name}/children/{child}
func (s *Server) addChild(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parent, err := s.registry.Get(vars["name"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	child, err := s.registry.Get(vars["child"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	if err := parent.AddChild(child); err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.summarize(parent))
}

// removeChild handles DELETE /roles/{name}/children/{child}
func (s *Server) removeChild(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parent, err := s.registry.Get(vars["name"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	child, err := s.registry.Get(vars["child"])
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	parent.RemoveChild(child)
	w.WriteHeader(http.StatusNoContent)
}

// listAdmins handles GET /admins
func (s *Server) listAdmins(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.summarize(s.registry.Admins()))
}

// addAdmin handles POST /admins
func (s *Server) addAdmin(w http.ResponseWriter, r *http.Request) {
	var req MemberRequest
	if !s.parseJSON(w, r, &req) {
		return
	}
	s.registry.AddAdmin(req.ID)
	s.writeJSON(w, http.StatusOK, s.summarize(s.registry.Admins()))
}

// kickAdmin handles DELETE /admins/{id}
func (s *Server) kickAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "admin id must be an integer")
		return
	}
	s.registry.KickAdmin(id)
	w.WriteHeader(http.StatusNoContent)
}

// check handles POST /check
func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !s.parseJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		s.writeError(w, http.StatusBadRequest, "role name is required")
		return
	}

	var u roles.Update
	if req.ChatID != 0 {
		u = roles.ChatUpdate(req.UserID, req.ChatID, parseChatKind(req.Chat))
	} else {
		u = roles.UserUpdate(req.UserID)
	}
	u = u.WithContext(r.Context())

	allowed, err := s.registry.Evaluate(req.Role, u)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CheckResponse{
		Role:    req.Role,
		UserID:  req.UserID,
		Allowed: allowed,
	})
}

func parseChatKind(kind string) roles.ChatKind {
	switch kind {
	case "private":
		return roles.ChatPrivate
	case "supergroup":
		return roles.ChatSupergroup
	case "channel":
		return roles.ChatChannel
	default:
		return roles.ChatGroup
	}
}

func (s *Server) parseJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeRegistryError maps registry errors to HTTP status codes.
func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roles.ErrUnknownRole):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, roles.ErrNameTaken):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roles.ErrCycle):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roles.ErrProviderConfigured):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		if s.logger != nil {
			s.logger.WithError(err).Error("internal error")
		}
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
