package stubs

import (
	"time"

	"productbom/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

type ProductStub struct {
	product entities.Product
}

func NewProductStub() ProductStub {
	now := time.Now().UTC()

	family := gofakeit.ProductCategory()
	description := gofakeit.ProductDescription()

	product := entities.Product{
		ID:            uuid.New(),
		Code:          gofakeit.LetterN(3) + gofakeit.DigitN(5),
		Name:          gofakeit.ProductName(),
		Family:        &family,
		ProductType:   entities.ProductTypeRaw,
		Description:   &description,
		AmountInStock: float64(gofakeit.IntRange(0, 500)),
		Unit:          "un",
		LeadTime:      float64(gofakeit.IntRange(1, 30)),
		PurchasePrice: gofakeit.Price(1, 1000),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return ProductStub{product: product}
}

func (ps ProductStub) WithID(id uuid.UUID) ProductStub {
	ps.product.ID = id
	return ps
}

func (ps ProductStub) WithCode(code string) ProductStub {
	ps.product.Code = code
	return ps
}

func (ps ProductStub) WithName(name string) ProductStub {
	ps.product.Name = name
	return ps
}

func (ps ProductStub) WithProductType(productType entities.ProductType) ProductStub {
	ps.product.ProductType = productType
	return ps
}

func (ps ProductStub) WithDeleted(deleted bool) ProductStub {
	ps.product.Deleted = deleted
	return ps
}

func (ps ProductStub) Get() entities.Product {
	return ps.product
}
