package serviceorder

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/servicedesk-api/internal/domain/repository"
)

// NextSequence siguiente secuencial de un contrato a partir de los IDs existentes.
// Solo cuentan los IDs de exactamente dos partes cuyo prefijo es el contrato: "10-3" no cuenta para "1".
func NextSequence(contract string, ids []string) int64 {
	var max int64
	for _, id := range ids {
		parts := strings.Split(id, "-")
		if len(parts) != 2 || parts[0] != contract {
			continue
		}
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// FormatID "{contrato}-{n}".
func FormatID(contract string, seq int64) string {
	return contract + "-" + strconv.FormatInt(seq, 10)
}

// Allocate debe ejecutarse dentro de la transacción que inserta la OS: el lock por contrato
// se libera recién en commit/rollback. Sin contrato devuelve un UUID.
func Allocate(ctx context.Context, orders repository.ServiceOrderRepository, contract string) (string, error) {
	if contract == "" {
		return uuid.New().String(), nil
	}
	if err := orders.LockContract(ctx, contract); err != nil {
		return "", err
	}
	ids, err := orders.ListIDsByPrefix(ctx, contract+"-")
	if err != nil {
		return "", err
	}
	return FormatID(contract, NextSequence(contract, ids)), nil
}
