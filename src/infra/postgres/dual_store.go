package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// DualStoreClient agrupa as duas conexões do sistema: o document store dos
// produtos e o graph store da composição. São recursos independentes: nenhuma
// transação atravessa os dois pools; consistência entre eles é responsabilidade
// do orquestrador via ações compensatórias.
type DualStoreClient struct {
	docPool   *pgxpool.Pool
	graphPool *pgxpool.Pool
}

func NewDualStoreClient(
	docHost string,
	graphHost string,
	docPort string,
	graphPort string,
	docName string,
	graphName string,
	username string,
	password string,
	maxConnections int,
) (*DualStoreClient, error) {

	docPool, err := NewPostgresClient(docHost, docPort, docName, username, password, maxConnections)
	if err != nil {
		return nil, err
	}

	graphPool, err := NewPostgresClient(graphHost, graphPort, graphName, username, password, maxConnections)
	if err != nil {
		docPool.Close()
		return nil, err
	}

	return &DualStoreClient{
		docPool:   docPool,
		graphPool: graphPool,
	}, nil
}

func (dsc *DualStoreClient) GetDocPool() *pgxpool.Pool {
	return dsc.docPool
}

func (dsc *DualStoreClient) GetGraphPool() *pgxpool.Pool {
	return dsc.graphPool
}

func (dsc *DualStoreClient) Close() {
	if dsc.docPool != nil {
		dsc.docPool.Close()
	}
	if dsc.graphPool != nil {
		dsc.graphPool.Close()
	}
}
