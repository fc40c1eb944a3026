package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"productbom/src/domain"
	"productbom/src/repositories"
)

func (s *Server) AddChild(w http.ResponseWriter, r *http.Request) {
	parentID, err := s.pathID(r, "parentId")
	if err != nil {
		http.Error(w, "Invalid parent id", http.StatusBadRequest)
		return
	}
	childID, err := s.pathID(r, "childId")
	if err != nil {
		http.Error(w, "Invalid child id", http.StatusBadRequest)
		return
	}

	var payload AssociatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if payload.Quantity <= 0 {
		http.Error(w, "quantity must be greater than zero", http.StatusBadRequest)
		return
	}

	cmd := domain.AssociateCommand{
		ParentID:       parentID,
		ChildID:        childID,
		Quantity:       payload.Quantity,
		RelationshipID: payload.RelationshipID,
	}

	if _, err := s.compositionService.Associate(r.Context(), cmd); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RemoveChild(w http.ResponseWriter, r *http.Request) {
	parentID, err := s.pathID(r, "parentId")
	if err != nil {
		http.Error(w, "Invalid parent id", http.StatusBadRequest)
		return
	}
	childID, err := s.pathID(r, "childId")
	if err != nil {
		http.Error(w, "Invalid child id", http.StatusBadRequest)
		return
	}

	if err := s.compositionService.Disassociate(r.Context(), parentID, childID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	spec := repositories.TraversalSpec{
		Direction:           repositories.DirectionDescendants,
		MaxSiblingsPerLevel: 10,
	}

	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid depth format", http.StatusBadRequest)
			return
		}
		spec.MaxDepth = depth
	}
	if raw := r.URL.Query().Get("siblings"); raw != "" {
		siblings, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid siblings format", http.StatusBadRequest)
			return
		}
		spec.MaxSiblingsPerLevel = siblings
	}

	tree, err := s.compositionService.GetDescendants(r.Context(), id, spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Array de um elemento: formato que os clientes da API sempre receberam.
	s.writeJSON(w, http.StatusOK, []*domain.BOMTree{tree})
}

func (s *Server) GetAncestors(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	ancestors, err := s.compositionService.GetAncestors(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	response := AncestorsResponse{ProductIDs: make([]string, 0, len(ancestors))}
	for _, ancestorID := range ancestors {
		response.ProductIDs = append(response.ProductIDs, ancestorID.String())
	}

	s.writeJSON(w, http.StatusOK, response)
}
