package repo_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/eshop/internal/redissvc"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"github.com/stretchr/testify/require"
)

func TestRedisProductRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	runRepositoryContract(t, func(t *testing.T) repo.ProductRepository {
		// A fresh prefix per subtest keeps runs isolated without FLUSHDB.
		svc, err := redissvc.Connect(context.Background(), addr, 0, fmt.Sprintf("eshop-test:%s", uuid.NewString()))
		require.NoError(t, err)
		t.Cleanup(func() { svc.Close() })
		return repo.NewRedisProductRepository(svc)
	})
}
