// Command add-warehouse-tag adds a tag to a list of Databricks SQL
// warehouses.
package main

import (
	"os"

	"github.com/lakehouse-ops/dbxtag/internal/cli"
	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

func main() {
	os.Exit(cli.Execute(cli.NewKindCommand(tagger.KindWarehouse, "add-warehouse-tag")))
}
