// Package model defines database models for persistence layer.
package model

// AllModels lists every table the service migrates.
func AllModels() []any {
	return []any{
		&AccountModel{},
		&RefreshTokenModel{},
		&AccountTokenModel{},
		&EmailQueueModel{},
		&EnergyActivityModel{},
	}
}
