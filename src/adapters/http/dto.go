package http

import (
	"net/http"

	"productbom/src/domain"
	"productbom/src/domain/entities"
)

// ProductPayload é o corpo de criação e de atualização de produto. A validação
// aqui é de formato; a regra de negócio do product type mora no core.
type ProductPayload struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Family        *string `json:"family,omitempty"`
	ProductType   int     `json:"product_type"`
	Description   *string `json:"description,omitempty"`
	AmountInStock float64 `json:"amount_in_stock"`
	Unit          string  `json:"unit"`
	LeadTime      float64 `json:"lead_time"`
	PurchasePrice float64 `json:"purchase_price"`
}

func (p ProductPayload) validate() (string, bool) {
	if p.Code == "" {
		return "code is required", false
	}
	if p.Name == "" {
		return "name is required", false
	}
	if p.AmountInStock < 0 {
		return "amount_in_stock cannot be negative", false
	}
	if p.LeadTime < 0 {
		return "lead_time cannot be negative", false
	}
	if p.PurchasePrice < 0 {
		return "purchase_price cannot be negative", false
	}
	return "", true
}

func (p ProductPayload) toCreateCommand() domain.CreateProductCommand {
	return domain.CreateProductCommand{
		Code:          p.Code,
		Name:          p.Name,
		Family:        p.Family,
		ProductType:   entities.ProductType(p.ProductType),
		Description:   p.Description,
		AmountInStock: p.AmountInStock,
		Unit:          p.Unit,
		LeadTime:      p.LeadTime,
		PurchasePrice: p.PurchasePrice,
	}
}

func (p ProductPayload) toUpdateCommand() domain.UpdateProductCommand {
	return domain.UpdateProductCommand{
		Code:          p.Code,
		Name:          p.Name,
		Family:        p.Family,
		ProductType:   entities.ProductType(p.ProductType),
		Description:   p.Description,
		AmountInStock: p.AmountInStock,
		Unit:          p.Unit,
		LeadTime:      p.LeadTime,
		PurchasePrice: p.PurchasePrice,
	}
}

type AssociatePayload struct {
	Quantity       float64 `json:"quantity"`
	RelationshipID string  `json:"relationship_id,omitempty"`
}

type AncestorsResponse struct {
	ProductIDs []string `json:"product_ids"`
}

// statusForError é o único ponto em que resultado do core vira status HTTP.
// O switch cobre todos os kinds; o default só apanha erro sem kind nenhum.
func statusForError(err error) int {
	kind, ok := domain.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDuplicateKey,
		domain.KindSelfReference,
		domain.KindCircularDependency,
		domain.KindInvalidProductType:
		return http.StatusUnprocessableEntity
	case domain.KindGraphWriteFailed,
		domain.KindInconsistentState,
		domain.KindStoreUnavailable,
		domain.KindStructuralInconsistency:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
