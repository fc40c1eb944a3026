package repositories_test

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/helper/env"
	"productbom/src/infra/postgres"
	"productbom/src/repositories"
	"productbom/src/test_artefacts/comparer"
	"productbom/src/test_artefacts/stubs"
	"productbom/src/test_artefacts/test_seeder"

	"github.com/google/uuid"
)

var _ = Describe("ProductRepository", func() {
	var (
		dualStore         *postgres.DualStoreClient
		productRepository *repositories.ProductRepository
		testSeeder        test_seeder.TestSeeder
		ctx               context.Context
		err               error
	)

	BeforeEach(func() {
		if os.Getenv("TEST_DOC_DB_HOST") == "" || os.Getenv("TEST_GRAPH_DB_HOST") == "" {
			Skip("TEST_DOC_DB_HOST/TEST_GRAPH_DB_HOST not set, skipping document store integration specs")
		}

		ctx = context.Background()

		docHost := env.MustGetString("TEST_DOC_DB_HOST")
		graphHost := env.MustGetString("TEST_GRAPH_DB_HOST")
		docPort := env.GetString("TEST_DOC_DB_PORT", "5432")
		graphPort := env.GetString("TEST_GRAPH_DB_PORT", "5432")
		docName := env.MustGetString("TEST_DOC_DB_NAME")
		graphName := env.MustGetString("TEST_GRAPH_DB_NAME")
		dbUser := env.MustGetString("TEST_DB_USER")
		dbPassword := env.MustGetString("TEST_DB_PASSWORD")
		maxConnections := env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 25)

		dualStore, err = postgres.NewDualStoreClient(
			docHost, graphHost, docPort, graphPort, docName, graphName,
			dbUser, dbPassword, maxConnections)
		if err != nil {
			panic(err)
		}

		Expect(repositories.EnsureDocSchema(ctx, dualStore.GetDocPool())).To(Succeed())
		Expect(repositories.EnsureGraphSchema(ctx, dualStore.GetGraphPool())).To(Succeed())

		productRepository = repositories.NewProductRepository(dualStore.GetDocPool())
		testSeeder = test_seeder.New(dualStore.GetDocPool(), dualStore.GetGraphPool())

		testSeeder.TruncateTables(ctx)
	})

	AfterEach(func() {
		if dualStore != nil {
			dualStore.Close()
		}
	})

	Context("when inserting products", func() {
		When("the code is free", func() {
			It("persists and returns the stored document", func() {
				// ARRANGE
				family := "eletrônica"
				description := "Motor de passo NEMA 17"
				cmd := domain.CreateProductCommand{
					Code:          "MTR-001",
					Name:          "Motor de passo",
					Family:        &family,
					ProductType:   entities.ProductTypeManufactured,
					Description:   &description,
					AmountInStock: 12,
					Unit:          "un",
					LeadTime:      5,
					PurchasePrice: 89.9,
				}

				// ACT
				product, err := productRepository.Insert(ctx, cmd)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(product.ID).NotTo(Equal(uuid.Nil))

				stored, err := productRepository.FindByID(ctx, product.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored).To(BeComparableTo(product, comparer.TimeWithinTolerance(200)))
			})
		})

		When("the code is held by a live product", func() {
			It("returns a duplicate key failure", func() {
				// ARRANGE
				existing := stubs.NewProductStub().WithCode("MTR-001").Get()
				testSeeder.InsertProduct(ctx, &existing)

				// ACT
				_, err := productRepository.Insert(ctx, domain.CreateProductCommand{
					Code:        "MTR-001",
					Name:        "Outro motor",
					ProductType: entities.ProductTypeRaw,
				})

				// ASSERT
				Expect(err).To(HaveOccurred())
				Expect(domain.IsKind(err, domain.KindDuplicateKey)).To(BeTrue())
			})
		})

		When("the code is held only by a deleted product", func() {
			It("accepts the insert", func() {
				// ARRANGE
				deleted := stubs.NewProductStub().WithCode("MTR-001").WithDeleted(true).Get()
				testSeeder.InsertProduct(ctx, &deleted)

				// ACT
				_, err := productRepository.Insert(ctx, domain.CreateProductCommand{
					Code:        "MTR-001",
					Name:        "Motor novo",
					ProductType: entities.ProductTypeRaw,
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Context("when reading and mutating by id", func() {
		It("treats a deleted product as absent", func() {
			// ARRANGE
			deleted := stubs.NewProductStub().WithDeleted(true).Get()
			testSeeder.InsertProduct(ctx, &deleted)

			// ACT + ASSERT
			_, err := productRepository.FindByID(ctx, deleted.ID)
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())

			err = productRepository.Update(ctx, deleted.ID, domain.UpdateProductCommand{
				Code:        deleted.Code,
				Name:        "novo nome",
				ProductType: deleted.ProductType,
			})
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())

			err = productRepository.SoftDelete(ctx, deleted.ID)
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())
		})

		It("restores a deleted product back into normal reads", func() {
			// ARRANGE
			deleted := stubs.NewProductStub().WithDeleted(true).Get()
			testSeeder.InsertProduct(ctx, &deleted)

			// ACT
			err := productRepository.Restore(ctx, deleted.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			restored, err := productRepository.FindByID(ctx, deleted.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.Deleted).To(BeFalse())
			Expect(restored.UpdatedAt).To(BeTemporally("~", time.Now().UTC(), 5*time.Second))
		})
	})

	Context("when paginating", func() {
		It("filters by family and excludes deleted products", func() {
			// ARRANGE
			family := "fixação"
			inFamily := stubs.NewProductStub().WithCode("PRF-001").Get()
			inFamily.Family = &family
			other := stubs.NewProductStub().WithCode("MTR-001").Get()
			gone := stubs.NewProductStub().WithCode("PRF-002").WithDeleted(true).Get()
			gone.Family = &family

			testSeeder.InsertProduct(ctx, &inFamily)
			testSeeder.InsertProduct(ctx, &other)
			testSeeder.InsertProduct(ctx, &gone)

			// ACT
			page, err := productRepository.Paginate(ctx, domain.PageQuery{
				Page:   1,
				Limit:  10,
				Family: family,
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(1)))
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Code).To(Equal("PRF-001"))
		})

		It("searches code and name case insensitively", func() {
			// ARRANGE
			byCode := stubs.NewProductStub().WithCode("MTR-001").WithName("Motor de passo").Get()
			byName := stubs.NewProductStub().WithCode("XYZ-001").WithName("Suporte do motor").Get()
			unrelated := stubs.NewProductStub().WithCode("PRF-001").WithName("Parafuso").Get()

			testSeeder.InsertProduct(ctx, &byCode)
			testSeeder.InsertProduct(ctx, &byName)
			testSeeder.InsertProduct(ctx, &unrelated)

			// ACT
			page, err := productRepository.Paginate(ctx, domain.PageQuery{
				Page:   1,
				Limit:  10,
				Search: "motor",
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(int64(2)))
		})
	})

	Context("when loading labels for tree assembly", func() {
		It("returns deleted products too", func() {
			// ARRANGE
			live := stubs.NewProductStub().WithCode("MTR-001").Get()
			gone := stubs.NewProductStub().WithCode("CMP-001").WithDeleted(true).Get()
			testSeeder.InsertProduct(ctx, &live)
			testSeeder.InsertProduct(ctx, &gone)

			// ACT
			products, err := productRepository.FindByIDsAnyState(ctx, []uuid.UUID{live.ID, gone.ID})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
		})
	})
})
