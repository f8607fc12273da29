//go:build integration

package mock

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/ethergyx/backend/config"
	"github.com/ethergyx/backend/internal/infra/db"
)

const integrationDSN = "file:ethergyx_integration?mode=memory&cache=shared"

var once sync.Once
var database *Db

// Db wraps the shared in-memory SQLite database used by the feature suite.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
}

// NewDb opens the shared database once and migrates the given models,
// keyed by table name.
func NewDb(models map[string]any) *Db {
	once.Do(func() {
		database = open(models)
	})
	return database
}

func open(models map[string]any) *Db {
	conn, err := db.NewSQLiteConnection(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    integrationDSN,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	d := &Db{
		DbConn: conn.DB(),
		models: models,
	}
	if err := d.ClearDB(); err != nil {
		panic(fmt.Sprintf("failed to clear database. err: %s", err.Error()))
	}
	return d
}

// ClearDB recreates every table so each scenario starts empty.
func (d *Db) ClearDB() error {
	modelList := d.modelList()

	if err := d.DbConn.Migrator().DropTable(modelList...); err != nil {
		return err
	}
	if err := d.DbConn.AutoMigrate(modelList...); err != nil {
		return err
	}

	for table, model := range d.models {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table %s was not created", table)
		}
	}
	return nil
}

// GetModel returns the model registered for a table.
func (d *Db) GetModel(table string) (any, bool) {
	model, ok := d.models[table]
	return model, ok
}

func (d *Db) modelList() []any {
	list := make([]any, 0, len(d.models))
	for _, model := range d.models {
		list = append(list, model)
	}
	return list
}
