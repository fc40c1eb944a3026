package domain

import (
	"productbom/src/domain/entities"

	"github.com/google/uuid"
)

// ############################################################
// ############ COMANDOS DO CICLO DE VIDA (ESCRITA) ###########
// ############################################################

// Cada operação recebe um comando imutável construído por chamada. Nada de
// objeto de configuração compartilhado sendo sobrescrito entre chamadas.

type CreateProductCommand struct {
	Code          string
	Name          string
	Family        *string
	ProductType   entities.ProductType
	Description   *string
	AmountInStock float64
	Unit          string
	LeadTime      float64
	PurchasePrice float64
}

// UpdateProductCommand substitui os campos mutáveis do produto. O ID nunca
// muda; a unicidade do code é re-checada pelo store quando ele muda.
type UpdateProductCommand struct {
	Code          string
	Name          string
	Family        *string
	ProductType   entities.ProductType
	Description   *string
	AmountInStock float64
	Unit          string
	LeadTime      float64
	PurchasePrice float64
}

type AssociateCommand struct {
	ParentID uuid.UUID
	ChildID  uuid.UUID
	Quantity float64
	// RelationshipID vazio = o orquestrador gera um.
	RelationshipID string
}

// ############################################################
// ################ LEITURA / PAGINAÇÃO #######################
// ############################################################

type PageQuery struct {
	Page        int
	Limit       int
	Search      string
	Family      string
	ProductType entities.ProductType
}

type ProductPage struct {
	Items []entities.Product `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// AncestorSet é o resultado de AncestorsOf: todo produto que, direta ou
// transitivamente, contém o produto consultado como componente.
type AncestorSet map[uuid.UUID]struct{}

func (s AncestorSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s AncestorSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
