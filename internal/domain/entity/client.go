package entity

import "time"

// RegistryClient cliente del registro legado (LocApp) con su copia local.
type RegistryClient struct {
	Document  string // CPF/CNPJ solo dígitos
	Code      int64
	Name      string
	TradeName string
	Email     string
	Payload   map[string]any // respuesta original del registro
	SyncedAt  time.Time
}
