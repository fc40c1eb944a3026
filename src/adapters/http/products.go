package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"productbom/src/domain"
	"productbom/src/domain/entities"

	"github.com/google/uuid"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, domain.ErrUnavailableServer.Error(), status)
		return
	}

	http.Error(w, err.Error(), status)
}

func (s *Server) pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(raw)
}

func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if msg, ok := payload.validate(); !ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	product, err := s.compositionService.Create(r.Context(), payload.toCreateCommand())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/products/"+product.ID.String())
	s.writeJSON(w, http.StatusCreated, product)
}

func (s *Server) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	product, err := s.compositionService.FindByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, product)
}

func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := domain.PageQuery{
		Search: r.URL.Query().Get("_search"),
		Family: r.URL.Query().Get("_family"),
	}

	if raw := r.URL.Query().Get("_page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid _page format", http.StatusBadRequest)
			return
		}
		query.Page = page
	}
	if raw := r.URL.Query().Get("_limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid _limit format", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("_type"); raw != "" {
		pt, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid _type format", http.StatusBadRequest)
			return
		}
		query.ProductType = entities.ProductType(pt)
	}

	page, err := s.compositionService.Paginate(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	var payload ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if msg, ok := payload.validate(); !ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if _, err := s.compositionService.Update(r.Context(), id, payload.toUpdateCommand()); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		cascade, err = strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid cascade format", http.StatusBadRequest)
			return
		}
	}

	if err := s.compositionService.SoftDelete(r.Context(), id, cascade); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
