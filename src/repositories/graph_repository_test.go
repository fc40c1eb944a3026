package repositories_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/helper/env"
	"productbom/src/infra/postgres"
	"productbom/src/repositories"
	"productbom/src/test_artefacts/stubs"
	"productbom/src/test_artefacts/test_seeder"

	"github.com/google/uuid"
)

var _ = Describe("GraphRepository", func() {
	var (
		dualStore       *postgres.DualStoreClient
		graphRepository *repositories.GraphRepository
		testSeeder      test_seeder.TestSeeder
		ctx             context.Context
		err             error
	)

	mustUpsertEdge := func(parentID, childID uuid.UUID, quantity float64) entities.CompositionEdge {
		Expect(graphRepository.UpsertNode(ctx, parentID)).To(Succeed())
		Expect(graphRepository.UpsertNode(ctx, childID)).To(Succeed())

		edge := stubs.NewEdgeStub().
			WithParentID(parentID).
			WithChildID(childID).
			WithQuantity(quantity).
			Get()

		created, err := graphRepository.UpsertEdge(ctx, edge)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		return edge
	}

	BeforeEach(func() {
		if os.Getenv("TEST_DOC_DB_HOST") == "" || os.Getenv("TEST_GRAPH_DB_HOST") == "" {
			Skip("TEST_DOC_DB_HOST/TEST_GRAPH_DB_HOST not set, skipping graph store integration specs")
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

		graphRepository = repositories.NewGraphRepository(dualStore.GetGraphPool())
		testSeeder = test_seeder.New(dualStore.GetDocPool(), dualStore.GetGraphPool())

		testSeeder.TruncateTables(ctx)
	})

	AfterEach(func() {
		if dualStore != nil {
			dualStore.Close()
		}
	})

	Context("when upserting edges", func() {
		It("reports created on the first call and updated on the repeat", func() {
			// ARRANGE
			parentID := uuid.New()
			childID := uuid.New()
			Expect(graphRepository.UpsertNode(ctx, parentID)).To(Succeed())
			Expect(graphRepository.UpsertNode(ctx, childID)).To(Succeed())

			edge := stubs.NewEdgeStub().WithParentID(parentID).WithChildID(childID).WithQuantity(10).Get()

			// ACT
			created, err := graphRepository.UpsertEdge(ctx, edge)
			Expect(err).NotTo(HaveOccurred())

			edge.Quantity = 25
			updated, err := graphRepository.UpsertEdge(ctx, edge)
			Expect(err).NotTo(HaveOccurred())

			// ASSERT
			Expect(created).To(BeTrue())
			Expect(updated).To(BeFalse())

			edges, err := graphRepository.ChildEdges(ctx, parentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(edges).To(HaveLen(1))
			Expect(edges[0].Quantity).To(Equal(float64(25)))
		})

		It("keeps the original relationship id on conflict", func() {
			// ARRANGE
			parentID := uuid.New()
			childID := uuid.New()
			original := mustUpsertEdge(parentID, childID, 10)

			// ACT
			replay := stubs.NewEdgeStub().
				WithParentID(parentID).
				WithChildID(childID).
				WithQuantity(10).
				WithRelationshipID(uuid.NewString()).
				Get()
			_, err := graphRepository.UpsertEdge(ctx, replay)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			edges, err := graphRepository.ChildEdges(ctx, parentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(edges).To(HaveLen(1))
			Expect(edges[0].RelationshipID).To(Equal(original.RelationshipID))
		})

		It("rejects an edge whose endpoint node is missing", func() {
			// ARRANGE
			parentID := uuid.New()
			Expect(graphRepository.UpsertNode(ctx, parentID)).To(Succeed())

			edge := stubs.NewEdgeStub().WithParentID(parentID).Get()

			// ACT
			_, err := graphRepository.UpsertEdge(ctx, edge)

			// ASSERT
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())
		})
	})

	Context("when removing edges", func() {
		It("returns not found for a missing edge, including on retry", func() {
			// ARRANGE
			parentID := uuid.New()
			childID := uuid.New()
			mustUpsertEdge(parentID, childID, 1)

			// ACT + ASSERT
			Expect(graphRepository.RemoveEdge(ctx, parentID, childID)).To(Succeed())

			err := graphRepository.RemoveEdge(ctx, parentID, childID)
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())
		})
	})

	Context("when walking ancestors", func() {
		It("collects transitive containers without the product itself", func() {
			// ARRANGE
			topID := uuid.New()
			midID := uuid.New()
			leafID := uuid.New()
			mustUpsertEdge(topID, midID, 1)
			mustUpsertEdge(midID, leafID, 1)

			// ACT
			ancestors, err := graphRepository.AncestorsOf(ctx, leafID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(ancestors.IDs()).To(ConsistOf(topID, midID))
			Expect(ancestors.Contains(leafID)).To(BeFalse())
		})
	})

	Context("when traversing descendants", func() {
		It("returns not found for a root that was never mirrored", func() {
			// ACT
			_, err := graphRepository.Traverse(ctx, uuid.New(), repositories.TraversalSpec{
				Direction: repositories.DirectionDescendants,
			})

			// ASSERT
			Expect(domain.IsKind(err, domain.KindNotFound)).To(BeTrue())
		})

		It("visits a diamond once per edge", func() {
			// ARRANGE
			rootID := uuid.New()
			leftID := uuid.New()
			rightID := uuid.New()
			sharedID := uuid.New()
			mustUpsertEdge(rootID, leftID, 1)
			mustUpsertEdge(rootID, rightID, 1)
			mustUpsertEdge(leftID, sharedID, 2)
			mustUpsertEdge(rightID, sharedID, 3)

			// ACT
			rows, err := graphRepository.Traverse(ctx, rootID, repositories.TraversalSpec{
				Direction: repositories.DirectionDescendants,
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
		})

		It("honors the configured depth limit", func() {
			// ARRANGE
			rootID := uuid.New()
			midID := uuid.New()
			leafID := uuid.New()
			mustUpsertEdge(rootID, midID, 1)
			mustUpsertEdge(midID, leafID, 1)

			// ACT
			rows, err := graphRepository.Traverse(ctx, rootID, repositories.TraversalSpec{
				Direction: repositories.DirectionDescendants,
				MaxDepth:  1,
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ChildID).To(Equal(midID))
		})

		It("caps siblings per parent when asked to", func() {
			// ARRANGE
			rootID := uuid.New()
			for i := 0; i < 5; i++ {
				mustUpsertEdge(rootID, uuid.New(), 1)
			}

			// ACT
			rows, err := graphRepository.Traverse(ctx, rootID, repositories.TraversalSpec{
				Direction:           repositories.DirectionDescendants,
				MaxSiblingsPerLevel: 2,
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})
	})

	Context("when counting parents", func() {
		It("reflects every direct container", func() {
			// ARRANGE
			childID := uuid.New()
			mustUpsertEdge(uuid.New(), childID, 1)
			mustUpsertEdge(uuid.New(), childID, 1)

			// ACT
			count, err := graphRepository.ParentCount(ctx, childID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})
	})
})
