// Command add-cluster-tag adds a tag to a list of Databricks all-purpose
// clusters.
package main

import (
	"os"

	"github.com/lakehouse-ops/dbxtag/internal/cli"
	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

func main() {
	os.Exit(cli.Execute(cli.NewKindCommand(tagger.KindCluster, "add-cluster-tag")))
}
