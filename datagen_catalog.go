//go:build datagen_catalog
// +build datagen_catalog

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"productbom/src/domain/entities"
	"productbom/src/helper/env"
	"productbom/src/infra/postgres"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogBundle é a unidade de trabalho: um lote de produtos e as arestas de
// composição entre eles. As arestas só apontam de índice menor para maior
// dentro do lote, então nenhum lote introduz ciclo.
type CatalogBundle struct {
	Products []entities.Product
	Edges    []entities.CompositionEdge
}

var productFamilies = []string{
	"fixação",
	"eletrônica",
	"usinados",
	"injetados",
	"embalagem",
}

var productUnits = []string{"un", "pc", "kg", "m"}

func newDualStoreClient() (*postgres.DualStoreClient, error) {
	docHost := env.MustGetString("DOC_DB_HOST")
	docPort := env.GetString("DOC_DB_PORT", "5432")
	docName := env.MustGetString("DOC_DB_NAME")
	graphHost := env.MustGetString("GRAPH_DB_HOST")
	graphPort := env.GetString("GRAPH_DB_PORT", "5432")
	graphName := env.MustGetString("GRAPH_DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")

	return postgres.NewDualStoreClient(
		docHost, graphHost, docPort, graphPort, docName, graphName,
		dbUser, dbPassword, 100)
}

func main() {
	numBundles := flag.Int("bundles", -1, "Número de lotes a gerar. Use -1 para infinito.")
	bundleSize := flag.Int("bundle-size", 50, "Produtos por lote")
	edgesPerProduct := flag.Int("edges-per-product", 3, "Arestas médias por produto manufaturado")
	numConsumers := flag.Int("consumers", 8, "Escritores concorrentes")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dualStore, err := newDualStoreClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer dualStore.Close()

	dataChan := make(chan CatalogBundle, *numConsumers*4)

	var wg sync.WaitGroup
	var totalProducts, totalEdges, totalErrors int64
	startTime := time.Now()

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				products := atomic.LoadInt64(&totalProducts)
				edges := atomic.LoadInt64(&totalEdges)
				errors := atomic.LoadInt64(&totalErrors)
				elapsed := time.Since(startTime)
				rate := float64(products) / elapsed.Seconds()

				fmt.Printf("📊 Products: %d | Edges: %d | Errors: %d | Rate: %.1f/s | Elapsed: %v\n",
					products, edges, errors, rate, elapsed.Round(time.Second))
			}
		}
	}()

	for i := 0; i < *numConsumers; i++ {
		wg.Add(1)
		go bundleWriter(ctx, &wg, dualStore, dataChan, &totalProducts, &totalEdges, &totalErrors)
	}

	wg.Add(1)
	go bundleProducer(ctx, &wg, dataChan, *numBundles, *bundleSize, *edgesPerProduct)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	wg.Wait()

	fmt.Printf("Done. Products: %d | Edges: %d | Errors: %d\n",
		atomic.LoadInt64(&totalProducts),
		atomic.LoadInt64(&totalEdges),
		atomic.LoadInt64(&totalErrors))
}

func bundleProducer(ctx context.Context, wg *sync.WaitGroup, out chan<- CatalogBundle, numBundles, bundleSize, edgesPerProduct int) {
	defer wg.Done()
	defer close(out)

	for produced := 0; numBundles < 0 || produced < numBundles; produced++ {
		bundle := generateBundle(bundleSize, edgesPerProduct)

		select {
		case <-ctx.Done():
			return
		case out <- bundle:
		}
	}
}

func generateBundle(bundleSize, edgesPerProduct int) CatalogBundle {
	products := make([]entities.Product, bundleSize)
	for i := range products {
		family := productFamilies[rand.Intn(len(productFamilies))]
		description := gofakeit.ProductDescription()

		productType := entities.ProductTypeRaw
		if rand.Float64() < 0.4 {
			productType = entities.ProductTypeManufactured
		}

		products[i] = entities.Product{
			ID:            uuid.New(),
			Code:          fmt.Sprintf("%s-%s", gofakeit.LetterN(3), uuid.NewString()[:8]),
			Name:          gofakeit.ProductName(),
			Family:        &family,
			ProductType:   productType,
			Description:   &description,
			AmountInStock: float64(rand.Intn(1000)),
			Unit:          productUnits[rand.Intn(len(productUnits))],
			LeadTime:      float64(rand.Intn(45)),
			PurchasePrice: gofakeit.Price(0.5, 2500),
		}
	}

	var edges []entities.CompositionEdge
	for i, product := range products {
		if product.ProductType != entities.ProductTypeManufactured {
			continue
		}
		// Pai só aponta para índices maiores: o lote nunca fecha ciclo.
		picked := map[int]struct{}{}
		for n := 0; n < edgesPerProduct; n++ {
			if i+1 >= bundleSize {
				break
			}
			childIdx := i + 1 + rand.Intn(bundleSize-i-1)
			if _, ok := picked[childIdx]; ok {
				continue
			}
			picked[childIdx] = struct{}{}
			edges = append(edges, entities.CompositionEdge{
				ParentID:       product.ID,
				ChildID:        products[childIdx].ID,
				Quantity:       float64(1 + rand.Intn(50)),
				RelationshipID: uuid.NewString(),
			})
		}
	}

	return CatalogBundle{Products: products, Edges: edges}
}

func bundleWriter(ctx context.Context, wg *sync.WaitGroup, dualStore *postgres.DualStoreClient, in <-chan CatalogBundle, totalProducts, totalEdges, totalErrors *int64) {
	defer wg.Done()

	for bundle := range in {
		if err := writeBundle(ctx, dualStore, bundle); err != nil {
			atomic.AddInt64(totalErrors, 1)
			continue
		}
		atomic.AddInt64(totalProducts, int64(len(bundle.Products)))
		atomic.AddInt64(totalEdges, int64(len(bundle.Edges)))
	}
}

func writeBundle(ctx context.Context, dualStore *postgres.DualStoreClient, bundle CatalogBundle) error {
	if err := copyProducts(ctx, dualStore.GetDocPool(), bundle.Products); err != nil {
		return err
	}
	return copyGraph(ctx, dualStore.GetGraphPool(), bundle)
}

func copyProducts(ctx context.Context, pool *pgxpool.Pool, products []entities.Product) error {
	batch := make([][]interface{}, len(products))
	for i, p := range products {
		batch[i] = []interface{}{
			p.ID, p.Code, p.Name, p.Family, int16(p.ProductType), p.Description,
			p.AmountInStock, p.Unit, p.LeadTime, p.PurchasePrice,
		}
	}

	_, err := pool.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "code", "name", "family", "product_type", "description", "amount_in_stock", "unit", "lead_time", "purchase_price"},
		pgx.CopyFromRows(batch))
	return err
}

func copyGraph(ctx context.Context, pool *pgxpool.Pool, bundle CatalogBundle) error {
	nodes := make([][]interface{}, len(bundle.Products))
	for i, p := range bundle.Products {
		nodes[i] = []interface{}{p.ID}
	}
	if _, err := pool.CopyFrom(ctx, pgx.Identifier{"graph_nodes"}, []string{"product_id"}, pgx.CopyFromRows(nodes)); err != nil {
		return err
	}

	edges := make([][]interface{}, len(bundle.Edges))
	for i, e := range bundle.Edges {
		edges[i] = []interface{}{e.ParentID, e.ChildID, e.Quantity, e.RelationshipID}
	}
	_, err := pool.CopyFrom(ctx,
		pgx.Identifier{"composition_edges"},
		[]string{"parent_id", "child_id", "quantity", "relationship_id"},
		pgx.CopyFromRows(edges))
	return err
}
