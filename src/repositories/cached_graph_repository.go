package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"productbom/src/infra/redis"

	"github.com/google/uuid"
)

// CachedGraphRepository decora as travessias do graph store com cache-aside em
// Redis. Escritas no grafo invalidam pelo registry de produto: cada árvore
// cacheada fica registrada sob cada produto que contém.
type CachedGraphRepository struct {
	graphRepository *GraphRepository
	redisClient     *redis.RedisClient
}

type cacheableTraversal struct {
	Rows []TraversalRow `json:"rows"`
}

func NewCachedGraphRepository(
	graphRepository *GraphRepository,
	redisClient *redis.RedisClient,
) *CachedGraphRepository {
	return &CachedGraphRepository{
		graphRepository: graphRepository,
		redisClient:     redisClient,
	}
}

func (r *CachedGraphRepository) Traverse(ctx context.Context, rootID uuid.UUID, spec TraversalSpec) ([]TraversalRow, error) {
	cacheKey := r.generateCacheKey(rootID, spec)

	cached, found, err := r.getFromCache(ctx, cacheKey)
	if found && err == nil {
		log.Printf("Cache HIT for key: %s", cacheKey)
		return cached.Rows, nil
	}

	if err != nil {
		// Erro de cache não derruba a leitura; segue para o store.
		log.Printf("Cache error for key %s: %v", cacheKey, err)
	}

	log.Printf("Cache MISS for key: %s", cacheKey)

	rows, err := r.graphRepository.Traverse(ctx, rootID, spec)
	if err != nil {
		return nil, err
	}

	go func() {
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r.setInCache(ctxWithTimeout, cacheKey, rootID, rows)
	}()

	return rows, nil
}

func (r *CachedGraphRepository) generateCacheKey(rootID uuid.UUID, spec TraversalSpec) string {
	keyData := fmt.Sprintf("traverse:%s:dir:%s:depth:%d:siblings:%d",
		rootID,
		spec.Direction,
		spec.MaxDepth,
		spec.MaxSiblingsPerLevel,
	)

	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("bom:tree:%x", hash)
}

func (r *CachedGraphRepository) getFromCache(ctx context.Context, cacheKey string) (*cacheableTraversal, bool, error) {
	cachedJSON, found, err := r.redisClient.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return nil, found, err
	}

	var result cacheableTraversal
	if err := json.Unmarshal([]byte(cachedJSON), &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached traversal: %w", err)
	}

	return &result, true, nil
}

func (r *CachedGraphRepository) setInCache(ctx context.Context, cacheKey string, rootID uuid.UUID, rows []TraversalRow) {
	dataJSON, err := json.Marshal(cacheableTraversal{Rows: rows})
	if err != nil {
		log.Printf("Failed to marshal cache data for key %s: %v", cacheKey, err)
		return
	}

	seen := map[uuid.UUID]struct{}{rootID: {}}
	for _, row := range rows {
		seen[row.ParentID] = struct{}{}
		seen[row.ChildID] = struct{}{}
	}

	registryKeys := make([]string, 0, len(seen))
	for id := range seen {
		registryKeys = append(registryKeys, registryKeyFor(id))
	}

	if err := r.redisClient.SetWithRegistry(ctx, cacheKey, string(dataJSON), registryKeys); err != nil {
		log.Printf("Failed to set cache with registry for key %s: %v", cacheKey, err)
		return
	}

	log.Printf("Cache SET with registry for key: %s (%d products)", cacheKey, len(registryKeys))
}

// InvalidateByProductIDs derruba toda árvore cacheada que contenha qualquer um
// dos produtos informados.
func (r *CachedGraphRepository) InvalidateByProductIDs(ctx context.Context, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	registryKeys := make([]string, len(productIDs))
	for i, productID := range productIDs {
		registryKeys[i] = registryKeyFor(productID)
	}

	registryResults, err := r.redisClient.GetMultipleSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("failed to get registry data: %w", err)
	}

	allKeysToDelete := make(map[string]bool)

	for registryKey, relatedKeys := range registryResults {
		allKeysToDelete[registryKey] = true
		for _, relatedKey := range relatedKeys {
			allKeysToDelete[relatedKey] = true
		}
	}

	keysToDelete := make([]string, 0, len(allKeysToDelete))
	for key := range allKeysToDelete {
		keysToDelete = append(keysToDelete, key)
	}

	if len(keysToDelete) > 0 {
		log.Printf("Invalidating %d cache keys for %d products", len(keysToDelete), len(productIDs))
		return r.redisClient.InvalidateKeys(ctx, keysToDelete)
	}

	return nil
}

func registryKeyFor(productID uuid.UUID) string {
	return fmt.Sprintf("registry:product:%s", productID)
}
