package memory_test

import (
	"testing"
	"time"

	"cleverspend/internal/storage"
	"cleverspend/internal/storage/memory"
	"cleverspend/internal/storage/storagetest"
)

var _ storage.Store = (*memory.Store)(nil)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time, loc *time.Location) storage.Store {
		return memory.New().WithClock(now).WithLocation(loc)
	})
}
