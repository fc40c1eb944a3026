package domain

import "github.com/google/uuid"

// ############################################################
// ############# ÁRVORE DE COMPOSIÇÃO (BOM) ###################
// ############################################################

// BOMTree é a visão derivada servida aos clientes. InstanceID é gerado a cada
// montagem: o mesmo produto pode aparecer em mais de um ramo da árvore, então
// o product id não serve como chave de instância.
type BOMTree struct {
	InstanceID string      `json:"id"`
	Label      string      `json:"text"`
	Data       BOMNodeData `json:"data"`
	Children   []*BOMTree  `json:"children"`
}

// BOMNodeData distingue "qual produto" (ProductID) de "qual posição na BOM"
// (RelationshipID). O nó raiz não tem aresta de entrada, então Quantity e
// RelationshipID ficam vazios nele.
type BOMNodeData struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       *float64  `json:"quantity,omitempty"`
	RelationshipID string    `json:"relationship_id,omitempty"`
}
