package serviceorder

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSequence(t *testing.T) {
	cases := []struct {
		name     string
		contract string
		ids      []string
		want     int64
	}{
		{"sin previos", "42", nil, 1},
		{"máximo más uno", "42", []string{"42-1", "42-7", "42-3"}, 8},
		// "10-3" comparte el prefijo textual "1" pero no es del contrato 1
		{"contrato 1 ignora 10", "1", []string{"1-1", "1-2", "10-3", "10-15"}, 3},
		{"partes extra se ignoran", "42", []string{"42-1-9", "42-x", "42-", "42-2"}, 3},
		{"sufijo no numérico", "7", []string{"7-abc"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextSequence(tc.contract, tc.ids))
		})
	}
}

func TestAllocate_NoContractGivesUUID(t *testing.T) {
	s := newStore()
	err := s.RunWorkflow(context.Background(), func(orders repository.ServiceOrderRepository, _ repository.PendencyRepository) error {
		id, err := Allocate(context.Background(), orders, "")
		require.NoError(t, err)
		_, perr := uuid.Parse(id)
		assert.NoError(t, perr)
		return nil
	})
	require.NoError(t, err)
}

func TestAllocate_ConcurrentSameContract(t *testing.T) {
	s := newStore()
	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunWorkflow(context.Background(), func(orders repository.ServiceOrderRepository, _ repository.PendencyRepository) error {
				id, err := Allocate(context.Background(), orders, "100")
				if err != nil {
					return err
				}
				return orders.Create(context.Background(), &entity.ServiceOrder{ID: id, Contract: "100"})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, s.orders, workers)
	for i := 1; i <= workers; i++ {
		assert.Contains(t, s.orders, fmt.Sprintf("100-%d", i))
	}
}
