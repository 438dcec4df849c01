// Package main implements the dbxtag binary, which adds a tag to
// Databricks all-purpose clusters and SQL warehouses.
package main

import (
	"os"

	"github.com/lakehouse-ops/dbxtag/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
